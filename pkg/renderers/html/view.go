package html

import (
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type pageView struct {
	Title       string               `json:"title"`
	Action      string               `json:"action"`
	Method      string               `json:"method"`
	Multipart   bool                 `json:"multipart"`
	Viewport    layout.Viewport      `json:"viewport"`
	Hidden      []render.HiddenField `json:"hidden"`
	FormErrors  []string             `json:"form_errors"`
	Rows        []rowView            `json:"rows"`
	Theme       themeView            `json:"theme"`
	SubmitLabel string               `json:"submit_label"`
	ResetLabel  string               `json:"reset_label"`
}

type rowView struct {
	Full  bool          `json:"full"`
	Field *controlView  `json:"field,omitempty"`
	Left  []controlView `json:"left,omitempty"`
	Right []controlView `json:"right,omitempty"`
}

type attrView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type optionView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// controlView is one field as the control template sees it. Control picks
// the markup: input, textarea, select, choices, file, header or spacer.
type controlView struct {
	ID          int          `json:"id"`
	DomID       string       `json:"dom_id"`
	Name        string       `json:"name"`
	Kind        model.Kind   `json:"kind"`
	Control     string       `json:"control"`
	InputType   string       `json:"input_type,omitempty"`
	Label       string       `json:"label"`
	Value       string       `json:"value"`
	Error       string       `json:"error,omitempty"`
	Help        string       `json:"help,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Required    bool         `json:"required"`
	Multiple    bool         `json:"multiple"`
	Width       model.Width  `json:"width"`
	Attrs       []attrView   `json:"attrs,omitempty"`
	Options     []optionView `json:"options,omitempty"`
	Choice      string       `json:"choice,omitempty"`
	Orientation string       `json:"orientation,omitempty"`
	Files       []string     `json:"files,omitempty"`
	Tag         string       `json:"tag,omitempty"`
	Spacer      string       `json:"spacer,omitempty"`
	Hidden      bool         `json:"hidden"`
}

func (r *Renderer) buildPage(form render.Form, opts render.Options, themeCfg *theme.RendererConfig) pageView {
	viewport := opts.Viewport
	if viewport == "" {
		viewport = layout.Large
	}
	method := strings.ToLower(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "post"
	}

	page := pageView{
		Title:       form.Title,
		Action:      opts.Action,
		Method:      method,
		Viewport:    viewport,
		Hidden:      render.SortedHiddenFields(opts.Hidden),
		FormErrors:  render.MergeFormErrors(opts.FormErrors),
		Theme:       r.buildTheme(themeCfg),
		SubmitLabel: r.submitLabel,
		ResetLabel:  r.resetLabel,
	}

	for _, row := range layout.Segment(form.Fields, viewport) {
		if row.Kind == layout.RowFull {
			control := r.buildControl(*row.Field, form)
			page.Rows = append(page.Rows, rowView{Full: true, Field: &control})
			continue
		}
		view := rowView{}
		for _, item := range row.Left {
			view.Left = append(view.Left, r.buildControl(item, form))
		}
		for _, item := range row.Right {
			view.Right = append(view.Right, r.buildControl(item, form))
		}
		page.Rows = append(page.Rows, view)
	}

	for _, field := range form.Fields {
		if field.Kind == model.KindFile {
			page.Multipart = true
			break
		}
	}
	return page
}

func (r *Renderer) buildControl(item layout.Item, form render.Form) controlView {
	field := item.Field
	view := controlView{
		ID:       field.ID,
		DomID:    "fb-" + field.Name,
		Name:     field.Name,
		Kind:     field.Kind,
		Label:    field.DisplayLabel(),
		Width:    field.Width,
		Hidden:   item.Hidden,
		Required: field.Rules.Required,
	}

	switch field.Kind {
	case model.KindHeader:
		view.Control = "header"
		view.Tag = string(field.HeaderLevel)
		if view.Tag == "" {
			view.Tag = string(model.HeaderH2)
		}
		view.Label = r.strict.Sanitize(field.Label)
		return view
	case model.KindSpacer:
		view.Control = "spacer"
		view.Spacer = string(field.SpacerSize)
		if view.Spacer == "" {
			view.Spacer = string(model.SpacerMedium)
		}
		return view
	}

	view.Value = form.Values[field.Name]
	view.Error = form.Errors[field.Name]
	view.Placeholder = field.Placeholder
	if help := strings.TrimSpace(field.Help); help != "" {
		view.Help = r.help.Sanitize(help)
	}

	switch field.Kind {
	case model.KindCheckboxGroup, model.KindRadioGroup:
		view.Control = "choices"
		view.Choice = "checkbox"
		if field.Kind == model.KindRadioGroup {
			view.Choice = "radio"
		}
		view.Orientation = string(field.Orientation)
		if view.Orientation == "" {
			view.Orientation = string(model.OrientationVertical)
		}
		view.Options = optionViews(field.Options)
	case model.KindSelect:
		view.Control = "select"
		view.Multiple = field.Multiple
		view.Options = optionViews(field.Options)
	case model.KindTextarea:
		view.Control = "textarea"
		view.Attrs = textareaAttrs(field)
	case model.KindFile:
		view.Control = "file"
		view.InputType = "file"
		view.Multiple = field.Multiple
		view.Attrs = fileAttrs(field)
		if view.Value != "" {
			_, view.Files = render.FormatValue(field, view.Value)
		}
	default:
		view.Control = "input"
		view.InputType = inputType(field.Kind)
		view.Attrs = inputAttrs(field)
	}
	return view
}

func optionViews(options []model.Option) []optionView {
	out := make([]optionView, 0, len(options))
	for _, opt := range options {
		out = append(out, optionView{Label: opt.Label, Value: opt.Value})
	}
	return out
}

func inputType(kind model.Kind) string {
	switch kind {
	case model.KindEmail, model.KindPassword, model.KindURL, model.KindTel, model.KindNumber, model.KindDate:
		return string(kind)
	case model.KindDatetime:
		return "datetime-local"
	default:
		return "text"
	}
}

func inputAttrs(field model.FieldSchema) []attrView {
	r := field.Rules
	var attrs []attrView
	add := func(name, value string) {
		if value != "" {
			attrs = append(attrs, attrView{Name: name, Value: value})
		}
	}

	add("placeholder", field.Placeholder)
	switch {
	case field.Kind == model.KindNumber:
		add("min", floatAttr(r.MinValue))
		add("max", floatAttr(r.MaxValue))
		add("step", floatAttr(r.Step))
	case field.Kind.Temporal():
		add("min", r.MinDate)
		add("max", r.MaxDate)
	default:
		if field.Kind == model.KindCurrency {
			add("inputmode", "decimal")
		}
		lengthAttrs(field, add)
		add("pattern", r.Pattern)
	}
	if field.Mask != "" {
		add("data-mask", string(field.Mask))
	}
	if r.MatchField != "" {
		add("data-match", r.MatchField)
	}
	return attrs
}

func textareaAttrs(field model.FieldSchema) []attrView {
	var attrs []attrView
	add := func(name, value string) {
		if value != "" {
			attrs = append(attrs, attrView{Name: name, Value: value})
		}
	}
	rows := field.Rows
	if rows <= 0 {
		rows = 4
	}
	add("rows", strconv.Itoa(rows))
	add("placeholder", field.Placeholder)
	lengthAttrs(field, add)
	return attrs
}

func lengthAttrs(field model.FieldSchema, add func(name, value string)) {
	r := field.Rules
	if r.ExactLength != nil {
		add("minlength", strconv.Itoa(*r.ExactLength))
		add("maxlength", strconv.Itoa(*r.ExactLength))
		return
	}
	add("minlength", intAttr(r.MinLength))
	add("maxlength", intAttr(r.MaxLength))
}

func fileAttrs(field model.FieldSchema) []attrView {
	if accept := strings.TrimSpace(field.Rules.Accept); accept != "" {
		return []attrView{{Name: "accept", Value: accept}}
	}
	return nil
}

func intAttr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatAttr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
