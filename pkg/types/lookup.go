package types

import "fmt"

// LookupConverter maps stored cell values to display text through a fixed
// table, as used by combo-style columns.
type LookupConverter struct {
	values []any
	texts  []string
}

// NewLookupConverter builds a converter from parallel value/text pairs.
func NewLookupConverter(pairs ...LookupPair) *LookupConverter {
	c := &LookupConverter{}
	for _, p := range pairs {
		c.values = append(c.values, p.Value)
		c.texts = append(c.texts, p.Text)
	}
	return c
}

// LookupPair is one entry of a LookupConverter table.
type LookupPair struct {
	Value any
	Text  string
}

// ToText returns the display text for v. Values outside the table are a
// contract violation.
func (c *LookupConverter) ToText(v any) (string, error) {
	for i, val := range c.values {
		if val == v {
			return c.texts[i], nil
		}
	}
	return "", Wrap(ErrUnknownValue, "lookup", fmt.Errorf("value %v", v))
}

// FromText returns the stored value for a display text.
func (c *LookupConverter) FromText(text string) (any, error) {
	for i, t := range c.texts {
		if t == text {
			return c.values[i], nil
		}
	}
	return nil, Wrap(ErrUnknownValue, "lookup", fmt.Errorf("text %q", text))
}

// Texts returns the display texts in table order.
func (c *LookupConverter) Texts() []string {
	out := make([]string, len(c.texts))
	copy(out, c.texts)
	return out
}
