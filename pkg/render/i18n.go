package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. fallback is the untranslated text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// ErrMissingTranslation is passed to the missing handler when the translator
// returned an empty string without an error.
var ErrMissingTranslation = errors.New("render: missing translation")

// LocalizeForm returns a copy of form with user-facing text translated. Keys
// are derived from field names:
//
//	form.title
//	fields.<name>.label
//	fields.<name>.placeholder
//	fields.<name>.help
//	fields.<name>.options.<value>
//
// Without a translator the form is returned unchanged. Untranslated keys keep
// their original text unless opts.OnMissing says otherwise.
func LocalizeForm(form Form, opts Options) Form {
	if opts.Translator == nil {
		return form
	}
	tr := translator{locale: opts.Locale, t: opts.Translator, onMissing: opts.OnMissing}

	out := form
	out.Title = tr.text("form.title", form.Title)
	out.Fields = make([]model.FieldSchema, len(form.Fields))
	for i, field := range form.Fields {
		field = field.Clone()
		prefix := "fields." + field.Name + "."
		field.Label = tr.text(prefix+"label", field.Label)
		field.Placeholder = tr.text(prefix+"placeholder", field.Placeholder)
		field.Help = tr.text(prefix+"help", field.Help)
		for j := range field.Options {
			field.Options[j].Label = tr.text(prefix+"options."+field.Options[j].Value, field.Options[j].Label)
		}
		out.Fields[i] = field
	}
	return out
}

type translator struct {
	locale    string
	t         Translator
	onMissing MissingTranslationHandler
}

func (tr translator) text(key, fallback string) string {
	if fallback == "" {
		return fallback
	}
	result, err := tr.t.Translate(tr.locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if tr.onMissing == nil {
		return fallback
	}
	if err == nil {
		err = ErrMissingTranslation
	}
	return tr.onMissing(tr.locale, key, fallback, err)
}
