package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultValue is the value a field starts with: the default option of a
// single-choice field, every default option joined with "," for checkbox
// groups and multi-selects, and "" for everything else.
func DefaultValue(field FieldSchema) string {
	if !field.Kind.Selection() {
		return ""
	}
	var picked []string
	for _, opt := range field.Options {
		if !opt.Default {
			continue
		}
		if field.SingleChoice() {
			return opt.Value
		}
		picked = append(picked, opt.Value)
	}
	return strings.Join(picked, ",")
}

// SplitSelection splits a comma-joined selection into its non-empty values.
func SplitSelection(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Block names a structural block the canvas can insert between fields.
type Block string

const (
	BlockHeader    Block = "header"
	BlockSubheader Block = "subheader"
	BlockSpacer    Block = "spacer"
)

// ErrUnknownBlock is returned by NewBlock for an unsupported block.
var ErrUnknownBlock = errors.New("model: unknown structural block")

// NewBlock builds a full-width structural field for block. Subheaders are
// headers at level h3.
func NewBlock(block Block, id int) (FieldSchema, error) {
	field := FieldSchema{
		ID:   id,
		Name: fmt.Sprintf("%s_%d", block, id),
		Attributes: Attributes{
			Width: WidthFull,
		},
	}
	switch block {
	case BlockHeader:
		field.Kind = KindHeader
		field.Label = "Header"
		field.HeaderLevel = HeaderH2
	case BlockSubheader:
		field.Kind = KindHeader
		field.Label = "Subheader"
		field.HeaderLevel = HeaderH3
	case BlockSpacer:
		field.Kind = KindSpacer
		field.SpacerSize = SpacerMedium
	default:
		return FieldSchema{}, fmt.Errorf("%w %q", ErrUnknownBlock, block)
	}
	return field, nil
}
