package tui

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputConfigs []InputConfig
	selectCfgs   []SelectConfig
	inputErr     error
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func textField(name, label string, required bool) model.FieldSchema {
	return model.FieldSchema{Kind: model.KindText, Name: name, Label: label,
		Attributes: model.Attributes{Width: model.WidthHalf, Rules: model.Constraints{Required: required}}}
}

func choiceField(kind model.Kind, name, label string, options ...model.Option) model.FieldSchema {
	return model.FieldSchema{Kind: kind, Name: name, Label: label,
		Attributes: model.Attributes{Width: model.WidthHalf, Options: options}}
}

func newTestRenderer(t *testing.T, driver *stubDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func decodeValues(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var payload struct {
		ID     string         `json:"id"`
		Values map[string]any `json:"values"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.ID == "" {
		t.Fatalf("submission id missing\n%s", out)
	}
	return payload.Values
}

func TestRender_FillsEveryKind(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "Ada", "docs/cv.pdf, notes.txt"},
		textAreas: []string{"Hello"},
		selectIdx: []int{2},
		multiIdx:  [][]int{{0, 1}},
	}
	stat := func(path string) (int64, error) {
		if path == "docs/cv.pdf" {
			return 2 * 1024 * 1024, nil
		}
		return 0, os.ErrNotExist
	}
	r := newTestRenderer(t, driver, WithFileStat(stat), WithTheme(Theme{InfoPrefix: "# ", ErrorPrefix: "! "}))

	form := render.Form{Fields: []model.FieldSchema{
		{Kind: model.KindHeader, Label: "Profile <em>basics</em>", Attributes: model.Attributes{Width: model.WidthFull}},
		textField("name", "Name", true),
		{Kind: model.KindTextarea, Name: "bio", Label: "Bio", Attributes: model.Attributes{Width: model.WidthFull}},
		choiceField(model.KindRadioGroup, "plan", "Plan", model.Option{Label: "Free", Value: "free"}, model.Option{Label: "Pro", Value: "pro"}),
		choiceField(model.KindCheckboxGroup, "topics", "Topics", model.Option{Label: "Go", Value: "go"}, model.Option{Label: "Rust", Value: "rust"}),
		{Kind: model.KindSpacer, Attributes: model.Attributes{Width: model.WidthFull}},
		{Kind: model.KindFile, Name: "cv", Label: "CV", Attributes: model.Attributes{Width: model.WidthFull, Multiple: true}},
	}}

	out, err := r.Render(context.Background(), form, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := map[string]any{
		"name":   "Ada",
		"bio":    "Hello",
		"plan":   "pro",
		"topics": []any{"go", "rust"},
		"cv": []any{
			map[string]any{"name": "cv.pdf", "sizeMB": 2.0},
			map[string]any{"name": "notes.txt", "sizeMB": 0.0},
		},
	}
	if diff := cmp.Diff(want, decodeValues(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"# Profile basics", "! Name: This field is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{noneLabel, "Free", "Pro"}, driver.selectCfgs[0].Options); diff != "" {
		t.Fatalf("optional radio options mismatch (-want +got):\n%s", diff)
	}
	if got := driver.inputConfigs[0].Message; got != "Name *" {
		t.Fatalf("required prompt message = %q", got)
	}
}

func TestRender_PrefilledValuesAreDefaults(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Grace"}, selectIdx: []int{1}}
	r := newTestRenderer(t, driver)

	form := render.Form{
		Fields: []model.FieldSchema{
			textField("name", "Name", false),
			{Kind: model.KindSelect, Name: "size", Label: "Size", Attributes: model.Attributes{
				Width:   model.WidthHalf,
				Options: []model.Option{{Label: "Small", Value: "s"}, {Label: "Large", Value: "l"}},
				Rules:   model.Constraints{Required: true},
			}},
		},
		Values: map[string]string{"name": "Ada", "size": "l"},
	}
	out, err := r.Render(context.Background(), form, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := driver.inputConfigs[0].Default; got != "Ada" {
		t.Fatalf("input default = %q, want prefilled value", got)
	}
	if got := driver.selectCfgs[0].DefaultIndex; got != 1 {
		t.Fatalf("select default index = %d, want 1", got)
	}
	if diff := cmp.Diff(map[string]any{"name": "Grace", "size": "l"}, decodeValues(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func matchForm() render.Form {
	confirm := model.FieldSchema{Kind: model.KindText, Name: "confirm", Label: "Confirm email",
		Attributes: model.Attributes{Width: model.WidthHalf, Rules: model.Constraints{MatchField: "email"}}}
	email := model.FieldSchema{Kind: model.KindEmail, Name: "email", Label: "Email",
		Attributes: model.Attributes{Width: model.WidthHalf}}
	return render.Form{Fields: []model.FieldSchema{confirm, email}}
}

func TestFill_RejectedSubmissionReprompts(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "a@b.co", "a@b.co"},
		confirm: []bool{true},
	}
	r := newTestRenderer(t, driver)

	out, err := r.Render(context.Background(), matchForm(), render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"confirm": "a@b.co", "email": "a@b.co"}, decodeValues(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! Confirm email: Must match Email"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_DeclinedSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"", "a@b.co"},
		confirm: []bool{false},
	}
	r := newTestRenderer(t, driver)

	if _, err := r.Render(context.Background(), matchForm(), render.Options{}); !errors.Is(err, ErrSubmitDeclined) {
		t.Fatalf("expected ErrSubmitDeclined, got %v", err)
	}
}

func TestFill_SkipsFieldsNoAnswerCanFix(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "abc", "x"}}
	r := newTestRenderer(t, driver)

	form := render.Form{Fields: []model.FieldSchema{
		{Kind: model.KindText, Name: "code", Label: "Code", Attributes: model.Attributes{
			Width: model.WidthHalf, Rules: model.Constraints{Required: true, Pattern: `(?=x)`}}},
		{Kind: model.KindText, Name: "repeat", Label: "Repeat", Attributes: model.Attributes{
			Width: model.WidthHalf, Rules: model.Constraints{MatchField: "ghost"}}},
	}}
	_, err := r.Render(context.Background(), form, render.Options{})
	if !errors.Is(err, ErrUnanswerable) {
		t.Fatalf("expected ErrUnanswerable, got %v", err)
	}
	if !strings.Contains(err.Error(), "code, repeat") {
		t.Fatalf("error should name the fields: %v", err)
	}
	if driver.inputPos != 3 || driver.confirmPos != 0 {
		t.Fatalf("prompts = %d inputs, %d confirms", driver.inputPos, driver.confirmPos)
	}
	want := []string{
		"! Code: This field is required",
		"! Code: Invalid format",
		`! Repeat: Match field "ghost" not found in form`,
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_PasswordMatch(t *testing.T) {
	driver := &stubDriver{passwords: []string{"secret1", "secret2", "secret1"}}
	r := newTestRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded))

	form := render.Form{Fields: []model.FieldSchema{
		{Kind: model.KindPassword, Name: "password", Label: "Password", Attributes: model.Attributes{Width: model.WidthHalf}},
		{Kind: model.KindPassword, Name: "repeat", Label: "Repeat", Attributes: model.Attributes{
			Width: model.WidthHalf, Rules: model.Constraints{MatchField: "password"}}},
	}}
	out, err := r.Render(context.Background(), form, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "password=secret1&repeat=secret1" {
		t.Fatalf("form output = %q", got)
	}
	if driver.passPos != 3 {
		t.Fatalf("password prompts = %d, want 3", driver.passPos)
	}
	if diff := cmp.Diff([]string{"! Repeat: Must match Password"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_OutputFormats(t *testing.T) {
	form := render.Form{
		Title: "Trip",
		Fields: []model.FieldSchema{
			textField("city", "City", false),
			choiceField(model.KindCheckboxGroup, "days", "Days", model.Option{Label: "Mon", Value: "mon"}, model.Option{Label: "Tue", Value: "tue"}),
		},
	}

	pretty := newTestRenderer(t, &stubDriver{inputs: []string{"Oslo"}, multiIdx: [][]int{{1}}}, WithOutputFormat(OutputFormatPrettyText))
	out, err := pretty.Render(context.Background(), form, render.Options{})
	if err != nil {
		t.Fatalf("render pretty: %v", err)
	}
	if got, want := string(out), "Trip\n====\n\nCity: Oslo\nDays:\n  - Tue\n"; got != want {
		t.Fatalf("pretty output mismatch:\nwant %q\ngot  %q", want, got)
	}
	if pretty.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("pretty content type = %s", pretty.ContentType())
	}

	encoded := newTestRenderer(t, &stubDriver{inputs: []string{"Oslo"}, multiIdx: [][]int{{0, 1}}}, WithOutputFormat(OutputFormatFormURLEncoded))
	out, err = encoded.Render(context.Background(), form, render.Options{})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	if got := string(out); got != "city=Oslo&days=mon&days=tue" {
		t.Fatalf("form output = %q", got)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	upper := func(values map[string]string) (map[string]string, error) {
		out := make(map[string]string, len(values))
		for k, v := range values {
			out[k] = strings.ToUpper(v)
		}
		return out, nil
	}
	r := newTestRenderer(t, &stubDriver{inputs: []string{"oslo"}}, WithSubmitTransformer(upper), WithOutputFormat(OutputFormatFormURLEncoded))
	out, err := r.Render(context.Background(), render.Form{Fields: []model.FieldSchema{textField("city", "City", false)}}, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "city=OSLO" {
		t.Fatalf("transformed output = %q", out)
	}

	failing := newTestRenderer(t, &stubDriver{inputs: []string{"oslo"}}, WithSubmitTransformer(func(map[string]string) (map[string]string, error) {
		return nil, errors.New("boom")
	}))
	if _, err := failing.Render(context.Background(), render.Form{Fields: []model.FieldSchema{textField("city", "City", false)}}, render.Options{}); err == nil {
		t.Fatalf("expected transformer error")
	}
}

func TestRender_StopsOnAbortAndCancel(t *testing.T) {
	form := render.Form{Fields: []model.FieldSchema{textField("city", "City", false)}}

	aborted := newTestRenderer(t, &stubDriver{inputErr: ErrAborted})
	if _, err := aborted.Render(context.Background(), form, render.Options{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	driver := &stubDriver{inputs: []string{"Oslo"}}
	if _, err := newTestRenderer(t, driver).Render(ctx, form, render.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if driver.inputPos != 0 {
		t.Fatalf("no prompt should run after cancellation")
	}
}

func TestRender_RejectsUnknownChoice(t *testing.T) {
	r := newTestRenderer(t, &stubDriver{selectIdx: []int{7}})
	form := render.Form{Fields: []model.FieldSchema{
		choiceField(model.KindRadioGroup, "plan", "Plan", model.Option{Label: "Free", Value: "free"}, model.Option{Label: "Pro", Value: "pro"}),
	}}
	if _, err := r.Render(context.Background(), form, render.Options{}); !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}

func TestParseOutputFormat(t *testing.T) {
	got := []OutputFormat{ParseOutputFormat("pretty"), ParseOutputFormat("form"), ParseOutputFormat("xml"), ParseOutputFormat("")}
	want := []OutputFormat{OutputFormatPrettyText, OutputFormatFormURLEncoded, OutputFormatJSON, OutputFormatJSON}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseOutputFormat mismatch (-want +got):\n%s", diff)
	}
}
