package snapshot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// amount decodes both quoted and bare numbers without going through float64.
type amount decimal.Decimal

func (a *amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a number", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	*a = amount(d)
	return nil
}

func (a amount) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: decimal.Decimal(a).StringFixed(2)}, nil
}

// scalar accepts ids written as strings or numbers.
type scalar string

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	*s = scalar(node.Value)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// timestamp parses RFC 3339 and a few shorter layouts, all UTC unless an offset is given.
type timestamp time.Time

func (t *timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be a scalar", node.Line)
	}
	if node.Value == "" || node.Tag == "!!null" {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, node.Value); err == nil {
			*t = timestamp(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("line %d: invalid timestamp %q", node.Line, node.Value)
}

func (t timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t timestamp) MarshalYAML() (any, error) {
	return time.Time(t).UTC().Format(time.RFC3339), nil
}
