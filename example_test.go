package trec_test

import (
	"bytes"
	"context"
	"fmt"

	trec "github.com/Arrrttyyyys/TREC"
	"github.com/Arrrttyyyys/TREC/record"
)

func ExampleGenerator_Generate() {
	input := []byte(`{
		"inspector": {"name": "Jane Roe", "license": "TREC #12345"},
		"property": {"address": "123 Main St", "city": "Austin", "state": "TX", "zip": "78701"},
		"inspection_date": "2026-08-01",
		"client": {"name": "John Doe"},
		"findings": [
			{"category": "Roof", "description": "Shingles curling", "status": "Deficient"},
			{"category": "Foundation", "status": "Inspected"}
		]
	}`)

	rec, err := record.Parse(input)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	gen := trec.NewGenerator()

	var buf bytes.Buffer
	if err := gen.Generate(context.Background(), rec, &buf); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("is PDF:", bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	// Output: is PDF: true
}
