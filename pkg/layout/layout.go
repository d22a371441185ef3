// Package layout partitions an ordered field list into rows. Full-width fields
// take a row on their own; runs of half-width fields are dealt into two
// independent lanes so a tall field on the left never pushes the right lane
// down.
package layout

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Viewport is the coarse screen class the form is laid out for.
type Viewport string

const (
	Small  Viewport = "small"
	Medium Viewport = "medium"
	Large  Viewport = "large"
)

// ParseViewport maps user input onto a Viewport. Unknown values fall back to
// Large.
func ParseViewport(raw string) Viewport {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "small", "sm":
		return Small
	case "medium", "md":
		return Medium
	default:
		return Large
	}
}

// RowKind tells a full-width row from a two-lane row.
type RowKind string

const (
	RowFull    RowKind = "full"
	RowColumns RowKind = "columns"
)

// Item is one field placed in a row. Index is the field's position in the
// list passed to Segment. Hidden is set for blocks flagged to hide on small
// viewports.
type Item struct {
	Field  model.FieldSchema
	Index  int
	Hidden bool
}

// Row is either a single full-width item or a pair of lanes.
type Row struct {
	Kind  RowKind
	Field *Item
	Left  []Item
	Right []Item
}

// Lanes returns the left and right lanes of a columns row. A full row
// reports its item as the only entry of the left lane.
func (r Row) Lanes() ([]Item, []Item) {
	if r.Kind == RowFull && r.Field != nil {
		return []Item{*r.Field}, nil
	}
	return r.Left, r.Right
}

// Segment partitions fields into rows for the viewport. On Small every field
// becomes its own full row in the original order. Otherwise full-width fields
// flush any pending half-width run, and half-width fields alternate left and
// right starting on the left for each run.
func Segment(fields []model.FieldSchema, viewport Viewport) []Row {
	rows := make([]Row, 0, len(fields))
	var left, right []Item
	nextLeft := true

	flush := func() {
		if len(left) == 0 && len(right) == 0 {
			return
		}
		rows = append(rows, Row{Kind: RowColumns, Left: left, Right: right})
		left, right = nil, nil
		nextLeft = true
	}

	for i, field := range fields {
		item := Item{
			Field:  field,
			Index:  i,
			Hidden: viewport == Small && field.HideOnSmall,
		}
		if viewport == Small || field.Width != model.WidthHalf {
			flush()
			rows = append(rows, Row{Kind: RowFull, Field: &item})
			continue
		}
		if nextLeft {
			left = append(left, item)
		} else {
			right = append(right, item)
		}
		nextLeft = !nextLeft
	}
	flush()
	return rows
}
