// Package tui fills a form from the terminal. Every answer goes through the
// session controller, so masking and validation match the other front ends.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/export"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/session"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// noneLabel is the extra choice that leaves an optional single choice empty.
const noneLabel = "(none)"

// Renderer implements render.Renderer for terminal sessions: Render prompts
// for every value-bearing field and returns the serialized submission.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	stat              FileStat
	logger            *zap.Logger
	plain             *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey on stdio, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
		stat:         statSize,
		logger:       zap.NewNop(),
		plain:        bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewStdioDriver()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render loads form into a fresh session, seeds its values and errors, runs
// the fill loop and serializes the accepted submission.
func (r *Renderer) Render(ctx context.Context, form render.Form, _ render.Options) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	ctrl, err := r.sessionFor(form)
	if err != nil {
		return nil, err
	}
	sub, err := r.Fill(ctx, ctrl)
	if err != nil {
		return nil, err
	}
	return r.Serialize(ctx, form.Title, sub)
}

func (r *Renderer) sessionFor(form render.Form) (*session.Controller, error) {
	drafts := make([]model.FieldDraft, 0, len(form.Fields))
	for _, field := range form.Fields {
		draft := model.DraftFrom(field)
		draft.ID = 0
		drafts = append(drafts, draft)
	}
	ctrl, err := session.New(session.WithFields(drafts), session.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("tui: load form: %w", err)
	}
	for _, field := range ctrl.Fields() {
		raw, ok := form.Values[field.Name]
		if !ok || !field.Kind.ValueBearing() {
			continue
		}
		if _, err := ctrl.ChangeValue(field.ID, raw); err != nil {
			return nil, fmt.Errorf("tui: seed %s: %w", field.Name, err)
		}
	}
	ctrl.ApplyErrors(form.Errors)
	return ctrl, nil
}

// Fill prompts for every field of ctrl in order, re-asking while a field
// holds an error, then submits. A rejected submission offers another pass
// over the invalid fields. Fields whose definition rejects every answer are
// reported once and skipped; when only those remain Fill returns
// ErrUnanswerable.
func (r *Renderer) Fill(ctx context.Context, ctrl *session.Controller) (session.Submission, error) {
	if r.driver == nil {
		return session.Submission{}, errors.New("tui: prompt driver is nil")
	}
	if ctrl == nil {
		return session.Submission{}, errors.New("tui: session is nil")
	}

	for _, field := range ctrl.Fields() {
		if err := r.visit(ctx, ctrl, field); err != nil {
			return session.Submission{}, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return session.Submission{}, err
		}
		sub, ok := ctrl.Submit()
		if ok {
			return sub, nil
		}

		var invalid []model.FieldSchema
		var broken []string
		for _, field := range ctrl.Fields() {
			if ctrl.Error(field.Name) == "" {
				continue
			}
			if _, ok := schemaRule(ctrl, field); ok {
				broken = append(broken, field.Name)
				continue
			}
			invalid = append(invalid, field)
		}
		if len(invalid) == 0 {
			return session.Submission{}, fmt.Errorf("%w: %s", ErrUnanswerable, strings.Join(broken, ", "))
		}
		again, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%d field(s) need attention. Fix them now?", len(invalid)),
			Default: true,
		})
		if err != nil {
			return session.Submission{}, err
		}
		if !again {
			return session.Submission{}, ErrSubmitDeclined
		}
		for _, field := range invalid {
			if err := r.promptField(ctx, ctrl, field, false); err != nil {
				return session.Submission{}, err
			}
		}
	}
}

func (r *Renderer) visit(ctx context.Context, ctrl *session.Controller, field model.FieldSchema) error {
	switch field.Kind {
	case model.KindHeader:
		return r.driver.Info(ctx, r.theme.InfoPrefix+r.plainText(field.Label))
	case model.KindSpacer:
		return nil
	}
	return r.promptField(ctx, ctrl, field, true)
}

// promptField asks until the stored value carries no error or fails a rule
// no answer can satisfy. On the first pass the error of an empty field is not
// shown before the first question.
func (r *Renderer) promptField(ctx context.Context, ctrl *session.Controller, field model.FieldSchema, firstPass bool) error {
	quiet := firstPass
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if message := ctrl.Error(field.Name); message != "" && !(quiet && ctrl.Value(field.Name) == "") {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+field.DisplayLabel()+": "+message); err != nil {
				return err
			}
		}
		quiet = false

		raw, err := r.ask(ctx, field, ctrl.Value(field.Name))
		if err != nil {
			return err
		}
		if _, err := ctrl.ChangeValue(field.ID, raw); err != nil {
			return fmt.Errorf("tui: change %s: %w", field.Name, err)
		}
		message := ctrl.Error(field.Name)
		if message == "" {
			return nil
		}
		if rule, ok := schemaRule(ctrl, field); ok {
			r.logger.Warn("field rejects every answer", zap.String("field", field.Name), zap.String("rule", string(rule)))
			return r.driver.Info(ctx, r.theme.ErrorPrefix+field.DisplayLabel()+": "+message)
		}
	}
}

// schemaRule reports the rule when the stored value of field fails because
// of the field definition rather than the answer.
func schemaRule(ctrl *session.Controller, field model.FieldSchema) (validation.Rule, bool) {
	snap := ctrl.Snapshot()
	err := validation.Validate(snap.Values[field.Name], field, snap.Values, snap.Fields)
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) && fieldErr.Rule.Schema() {
		return fieldErr.Rule, true
	}
	return "", false
}

func (r *Renderer) ask(ctx context.Context, field model.FieldSchema, current string) (string, error) {
	message := field.DisplayLabel()
	if field.Rules.Required {
		message += " *"
	}
	help := r.plainText(field.Help)
	if help == "" && field.Placeholder != "" {
		help = "e.g. " + field.Placeholder
	}

	switch {
	case field.Kind == model.KindPassword:
		return r.driver.Password(ctx, InputConfig{Message: message, Help: help})
	case field.Kind == model.KindTextarea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Help: help})
	case field.MultiSelect():
		return r.askMany(ctx, field, message, help, current)
	case field.Kind == model.KindRadioGroup || field.Kind == model.KindSelect:
		return r.askOne(ctx, field, message, help, current)
	case field.Kind == model.KindFile:
		if help == "" {
			help = "Comma-separated file paths"
		}
		raw, err := r.driver.Input(ctx, InputConfig{Message: message, Default: fileNames(current), Help: help})
		if err != nil {
			return "", err
		}
		return r.files(raw), nil
	default:
		return r.driver.Input(ctx, InputConfig{Message: message, Default: current, Help: help})
	}
}

func (r *Renderer) askOne(ctx context.Context, field model.FieldSchema, message, help, current string) (string, error) {
	labels := optionLabels(field.Options)
	offset := 0
	if !field.Rules.Required {
		labels = append([]string{noneLabel}, labels...)
		offset = 1
	}
	def := 0
	for i, opt := range field.Options {
		if opt.Value == current {
			def = i + offset
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: def, Help: help})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(labels) {
		return "", fmt.Errorf("%w: %s %d", ErrNoChoices, field.Name, idx)
	}
	if idx < offset {
		return "", nil
	}
	return field.Options[idx-offset].Value, nil
}

func (r *Renderer) askMany(ctx context.Context, field model.FieldSchema, message, help, current string) (string, error) {
	picked := make(map[string]struct{})
	for _, value := range model.SplitSelection(current) {
		picked[value] = struct{}{}
	}
	var defaults []int
	for i, opt := range field.Options {
		if _, ok := picked[opt.Value]; ok {
			defaults = append(defaults, i)
		}
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  message,
		Options:  optionLabels(field.Options),
		Defaults: defaults,
		Help:     help,
	})
	if err != nil {
		return "", err
	}
	values := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(field.Options) {
			return "", fmt.Errorf("%w: %s %d", ErrNoChoices, field.Name, idx)
		}
		values = append(values, field.Options[idx].Value)
	}
	return strings.Join(values, ","), nil
}

// files turns comma-separated paths into the stored file list. Only the base
// name and size are kept; a path that cannot be read is recorded with size 0.
func (r *Renderer) files(raw string) string {
	var files []model.FileMeta
	for _, part := range strings.Split(raw, ",") {
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		meta := model.FileMeta{Name: filepath.Base(path)}
		if size, err := r.stat(path); err == nil {
			meta.SizeMB = math.Round(float64(size)/(1024*1024)*100) / 100
		}
		files = append(files, meta)
	}
	return model.EncodeFiles(files)
}

func (r *Renderer) plainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(r.plain.Sanitize(s)))
}

type submissionJSON struct {
	ID          string         `json:"id"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Values      map[string]any `json:"values"`
}

// Serialize encodes an accepted submission in the configured output format.
func (r *Renderer) Serialize(ctx context.Context, title string, sub session.Submission) ([]byte, error) {
	values := sub.Values
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(sub.Fields, values)), nil
	case OutputFormatPrettyText:
		return render.NewTextRenderer().Render(ctx, render.Form{Title: title, Fields: sub.Fields, Values: values}, render.Options{})
	default:
		out, err := json.MarshalIndent(submissionJSON{
			ID:          sub.ID.String(),
			SubmittedAt: sub.SubmittedAt,
			Values:      export.Payload(sub.Fields, values),
		}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode submission: %w", err)
		}
		return append(out, '\n'), nil
	}
}

func encodeForm(fields []model.FieldSchema, values map[string]string) string {
	form := url.Values{}
	for _, field := range fields {
		raw, ok := values[field.Name]
		if !ok || !field.Kind.ValueBearing() {
			continue
		}
		if field.MultiSelect() {
			for _, value := range model.SplitSelection(raw) {
				form.Add(field.Name, value)
			}
			continue
		}
		form.Set(field.Name, raw)
	}
	return form.Encode()
}

func optionLabels(options []model.Option) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Label)
	}
	return out
}

func fileNames(raw string) string {
	files := model.ParseFiles(raw)
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return strings.Join(names, ", ")
}

func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
