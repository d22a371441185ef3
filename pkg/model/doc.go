// Package model defines the form field schema: the closed set of field kinds,
// the finalized FieldSchema consumed by validation, layout and rendering, and
// the FieldDraft the builder composes before calling Finalize. Drafts may be
// incomplete (no kind, no name); a FieldSchema returned by Finalize always
// satisfies the schema invariants:
//
//   - value-bearing fields carry a non-empty name that is unique among the
//     value-bearing fields of the form
//   - radio groups hold at least two options, checkbox groups and selects at
//     least one, and single-choice kinds at most one default option
//   - paired bounds (length, words, value, date) never cross and a step, when
//     present, is positive
//
// Structural kinds (header, spacer) shape the layout only. They never hold a
// value and are skipped by validation and submission.
package model
