package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// TextRenderer prints a form as plain text: one "Label: value" line per
// value-bearing field, headers as underlined titles, and errors beneath the
// offending field.
type TextRenderer struct{}

// NewTextRenderer returns the plain text renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (*TextRenderer) Name() string        { return "text" }
func (*TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (*TextRenderer) Render(ctx context.Context, form Form, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	form = LocalizeForm(form, opts)

	var buf bytes.Buffer
	if form.Title != "" {
		fmt.Fprintf(&buf, "%s\n%s\n\n", form.Title, strings.Repeat("=", len([]rune(form.Title))))
	}
	for _, message := range normalizeMessages(opts.FormErrors) {
		fmt.Fprintf(&buf, "! %s\n", message)
	}

	for _, field := range form.Fields {
		switch field.Kind {
		case model.KindHeader:
			fmt.Fprintf(&buf, "\n%s\n%s\n", field.Label, strings.Repeat(underline(field.HeaderLevel), len([]rune(field.Label))))
			continue
		case model.KindSpacer:
			buf.WriteString("\n")
			continue
		}

		value, items := FormatValue(field, form.Values[field.Name])
		switch {
		case items != nil:
			fmt.Fprintf(&buf, "%s:\n", field.DisplayLabel())
			for _, item := range items {
				fmt.Fprintf(&buf, "  - %s\n", item)
			}
		case field.Kind == model.KindTextarea && strings.Contains(value, "\n"):
			fmt.Fprintf(&buf, "%s:\n", field.DisplayLabel())
			for _, line := range strings.Split(value, "\n") {
				fmt.Fprintf(&buf, "  %s\n", line)
			}
		default:
			fmt.Fprintf(&buf, "%s: %s\n", field.DisplayLabel(), value)
		}
		if message := form.Errors[field.Name]; message != "" {
			fmt.Fprintf(&buf, "  ! %s\n", message)
		}
	}
	return buf.Bytes(), nil
}

func underline(level model.HeaderLevel) string {
	if level == model.HeaderH1 || level == model.HeaderH2 {
		return "="
	}
	return "-"
}
