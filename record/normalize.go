package record

import "strings"

// Placeholder is the default substitute text for any absent or empty field.
// No rendered field is ever blank: it is either real content or this string.
const Placeholder = "Data not found in test data"

// Normalizer resolves optional scalar fields to display values. It is a
// total function over its input: there are no failure modes and no side
// effects. The placeholder lives here as the single source of truth so that
// every call site renders the same substitute text.
type Normalizer struct {
	placeholder string
}

// NewNormalizer returns a Normalizer using the given placeholder text, or
// the package default when placeholder is empty.
func NewNormalizer(placeholder string) Normalizer {
	if placeholder == "" {
		placeholder = Placeholder
	}
	return Normalizer{placeholder: placeholder}
}

// Resolve returns the trimmed value, or the placeholder when the value is
// empty after trimming.
func (n Normalizer) Resolve(v string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return n.placeholder
}

// Placeholder reports the substitute text this Normalizer resolves empties to.
func (n Normalizer) Placeholder() string {
	return n.placeholder
}
