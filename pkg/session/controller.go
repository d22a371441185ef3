// Package session owns one form: its ordered fields, the current value and
// error of every value-bearing field, and the builder's edit state. All
// mutations go through the Controller, which finalizes drafts, masks input,
// validates values and keeps cross-field errors current.
//
// A Controller is meant to be driven by one caller and is not safe for
// concurrent use.
package session

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/mask"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// State is the builder state of a session.
type State string

const (
	Idle    State = "idle"
	Editing State = "editing"
)

// Direction moves a field one slot towards the top or the bottom.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// Option configures a Controller.
type Option func(*config)

type config struct {
	logger *zap.Logger
	clock  func() time.Time
	fields []model.FieldDraft
}

// WithLogger sets the logger used for mutation and submit events.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp submissions.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithFields preloads the form with drafts, in order, as if each was passed
// to AddField.
func WithFields(drafts []model.FieldDraft) Option {
	return func(cfg *config) {
		cfg.fields = append(cfg.fields, drafts...)
	}
}

// Submission is the snapshot taken by a successful Submit.
type Submission struct {
	ID          uuid.UUID
	SubmittedAt time.Time
	Fields      []model.FieldSchema
	Values      map[string]string
}

// Snapshot is a read-only copy of the session, enough to re-render it.
type Snapshot struct {
	Fields    []model.FieldSchema
	Values    map[string]string
	Errors    map[string]string
	EditingID int
	State     State
}

// Controller is the form session state machine.
type Controller struct {
	logger *zap.Logger
	now    func() time.Time

	fields  []model.FieldSchema
	values  map[string]string
	errors  map[string]string
	editing int
	lastID  int

	// dependents maps a field name to the ids of fields whose MatchField
	// references it.
	dependents map[string][]int
}

// New builds a Controller. It fails only when a draft passed through
// WithFields does not finalize.
func New(opts ...Option) (*Controller, error) {
	cfg := config{
		logger: zap.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Controller{
		logger:     cfg.logger,
		now:        cfg.clock,
		values:     make(map[string]string),
		errors:     make(map[string]string),
		dependents: make(map[string][]int),
	}
	for i, draft := range cfg.fields {
		if _, err := c.AddField(draft); err != nil {
			return nil, fmt.Errorf("session: preload field %d: %w", i, err)
		}
	}
	return c, nil
}

// State reports whether a field is being edited.
func (c *Controller) State() State {
	if c.editing != 0 {
		return Editing
	}
	return Idle
}

// EditingID returns the id of the field being edited, or 0.
func (c *Controller) EditingID() int {
	return c.editing
}

// Field returns a copy of the field with id.
func (c *Controller) Field(id int) (model.FieldSchema, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return model.FieldSchema{}, false
	}
	return c.fields[i].Clone(), true
}

// Fields returns a copy of the ordered schema.
func (c *Controller) Fields() []model.FieldSchema {
	return cloneFields(c.fields)
}

// Value returns the stored value of the field named name.
func (c *Controller) Value(name string) string {
	return c.values[name]
}

// Error returns the current error message of the field named name.
func (c *Controller) Error(name string) string {
	return c.errors[name]
}

// AddField finalizes an unbound draft, assigns it the next id and appends it.
func (c *Controller) AddField(draft model.FieldDraft) (model.FieldSchema, error) {
	if draft.Bound() {
		return model.FieldSchema{}, ErrDraftBound
	}
	field, err := model.Finalize(draft, c.fields)
	if err != nil {
		return model.FieldSchema{}, fmt.Errorf("session: add field: %w", err)
	}
	field.ID = c.nextID()
	if field.Kind.Structural() && field.Name == "" {
		field.Name = fmt.Sprintf("%s_%d", field.Kind, field.ID)
	}

	c.fields = append(c.fields, field)
	c.seedDefault(field)
	c.rebuildIndex()

	c.logger.Debug("field added",
		zap.Int("id", field.ID),
		zap.String("name", field.Name),
		zap.String("kind", string(field.Kind)),
	)
	return field.Clone(), nil
}

// EditField moves the session into Editing(id) and returns the field loaded
// into a draft. Asking again for the field already being edited returns its
// draft; asking for another one fails with ErrEditInProgress.
func (c *Controller) EditField(id int) (model.FieldDraft, error) {
	if c.editing != 0 && c.editing != id {
		return model.FieldDraft{}, ErrEditInProgress
	}
	i := c.indexOf(id)
	if i < 0 {
		return model.FieldDraft{}, fmt.Errorf("%w: id %d", ErrUnknownField, id)
	}
	c.editing = id
	c.logger.Debug("edit started", zap.Int("id", id))
	return model.DraftFrom(c.fields[i]), nil
}

// Draft returns the draft of the field being edited.
func (c *Controller) Draft() (model.FieldDraft, bool) {
	if c.editing == 0 {
		return model.FieldDraft{}, false
	}
	return model.DraftFrom(c.fields[c.indexOf(c.editing)]), true
}

// SaveEdit finalizes draft over the field being edited and returns to Idle.
// A schema error leaves the session in Editing so the draft can be fixed.
func (c *Controller) SaveEdit(draft model.FieldDraft) (model.FieldSchema, error) {
	if c.editing == 0 {
		return model.FieldSchema{}, ErrNotEditing
	}
	if draft.ID != 0 && draft.ID != c.editing {
		return model.FieldSchema{}, ErrDraftMismatch
	}
	draft.ID = c.editing

	field, err := c.replace(draft)
	if err != nil {
		return model.FieldSchema{}, fmt.Errorf("session: save edit: %w", err)
	}
	c.editing = 0
	c.logger.Debug("edit saved", zap.Int("id", field.ID), zap.String("name", field.Name))
	return field.Clone(), nil
}

// CancelEdit discards the current edit.
func (c *Controller) CancelEdit() error {
	if c.editing == 0 {
		return ErrNotEditing
	}
	c.logger.Debug("edit cancelled", zap.Int("id", c.editing))
	c.editing = 0
	return nil
}

// UpdateField replaces an existing field in place. It serves canvas-level
// tweaks such as toggling the width, and is rejected for the field being
// edited.
func (c *Controller) UpdateField(field model.FieldSchema) error {
	if field.ID == 0 || c.indexOf(field.ID) < 0 {
		return fmt.Errorf("%w: id %d", ErrUnknownField, field.ID)
	}
	if field.ID == c.editing {
		return ErrFieldBeingEdited
	}
	updated, err := c.replace(model.DraftFrom(field))
	if err != nil {
		return fmt.Errorf("session: update field: %w", err)
	}
	c.logger.Debug("field updated", zap.Int("id", updated.ID), zap.String("name", updated.Name))
	return nil
}

// replace finalizes a bound draft and swaps it in for the field with the same
// id. Values and errors follow a rename; the default is seeded only when the
// field has no value yet.
func (c *Controller) replace(draft model.FieldDraft) (model.FieldSchema, error) {
	i := c.indexOf(draft.ID)
	old := c.fields[i]

	field, err := model.Finalize(draft, c.fields)
	if err != nil {
		return model.FieldSchema{}, err
	}
	if field.Kind.Structural() && field.Name == "" {
		field.Name = old.Name
		if old.Kind.ValueBearing() || field.Name == "" {
			field.Name = fmt.Sprintf("%s_%d", field.Kind, field.ID)
		}
	}
	c.fields[i] = field

	if old.Kind.ValueBearing() {
		value, hasValue := c.values[old.Name]
		message, hasError := c.errors[old.Name]
		delete(c.values, old.Name)
		delete(c.errors, old.Name)
		if field.Kind.ValueBearing() {
			if hasValue {
				c.values[field.Name] = value
			}
			if hasError {
				c.errors[field.Name] = message
			}
		}
	}
	if c.values[field.Name] == "" {
		c.seedDefault(field)
	}
	c.rebuildIndex()
	return field, nil
}

// MoveField swaps the field at index with its neighbour. Moving past either
// end is a no-op.
func (c *Controller) MoveField(index int, dir Direction) error {
	if index < 0 || index >= len(c.fields) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if dir != Up && dir != Down {
		return fmt.Errorf("session: invalid direction %d", dir)
	}
	j := index + int(dir)
	if j < 0 || j >= len(c.fields) {
		return nil
	}
	c.fields[index], c.fields[j] = c.fields[j], c.fields[index]
	c.logger.Debug("field moved", zap.Int("from", index), zap.Int("to", j))
	return nil
}

// DeleteField removes the field at index together with its value and error.
func (c *Controller) DeleteField(index int) error {
	if index < 0 || index >= len(c.fields) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	field := c.fields[index]
	if field.ID == c.editing {
		return ErrFieldBeingEdited
	}
	c.fields = slices.Delete(c.fields, index, index+1)
	if field.Kind.ValueBearing() {
		delete(c.values, field.Name)
		delete(c.errors, field.Name)
	}
	c.rebuildIndex()
	c.logger.Debug("field deleted", zap.Int("id", field.ID), zap.String("name", field.Name))
	return nil
}

// ChangeValue masks raw for the field with id, validates it, stores the
// result and re-validates every field that must match this one. It returns
// the stored value.
func (c *Controller) ChangeValue(id int, raw string) (string, error) {
	i := c.indexOf(id)
	if i < 0 {
		return "", fmt.Errorf("%w: id %d", ErrUnknownField, id)
	}
	field := c.fields[i]
	if !field.Kind.ValueBearing() {
		return "", ErrStructuralField
	}

	value := maskValue(field, raw)
	c.values[field.Name] = value
	c.check(field, value)

	for _, depID := range c.dependents[field.Name] {
		if depID == field.ID {
			continue
		}
		dep := c.fields[c.indexOf(depID)]
		c.check(dep, c.values[dep.Name])
	}
	return value, nil
}

// Submit validates every value-bearing field, then re-checks the cross-field
// rules against the final values. The error map is replaced by the outcome.
// On success it returns a snapshot of the submitted values.
func (c *Controller) Submit() (Submission, bool) {
	errs := make(map[string]string)
	resolved := make(map[string]string)

	for _, field := range c.fields {
		if !field.Kind.ValueBearing() {
			continue
		}
		value := c.values[field.Name]
		if value == "" && !field.Kind.Selection() && field.Kind != model.KindFile {
			value = model.DefaultValue(field)
		}
		resolved[field.Name] = value
		if err := validation.Validate(value, field, c.values, c.fields); err != nil {
			errs[field.Name] = err.Error()
		}
	}
	for _, field := range c.fields {
		if !field.Kind.ValueBearing() || field.Rules.MatchField == "" {
			continue
		}
		if err := validation.Validate(resolved[field.Name], field, c.values, c.fields); err != nil {
			errs[field.Name] = err.Error()
		} else {
			delete(errs, field.Name)
		}
	}
	c.errors = errs

	if len(errs) > 0 {
		c.logger.Info("submit rejected", zap.Int("errors", len(errs)), zap.Strings("fields", sortedKeys(errs)))
		return Submission{}, false
	}

	sub := Submission{
		ID:          uuid.New(),
		SubmittedAt: c.now(),
		Fields:      cloneFields(c.fields),
		Values:      resolved,
	}
	c.logger.Info("submit accepted", zap.String("submission", sub.ID.String()), zap.Int("values", len(resolved)))
	return sub, true
}

// Reset restores every value to its default and clears all errors. The
// schema and edit state are left alone.
func (c *Controller) Reset() {
	c.values = make(map[string]string)
	c.errors = make(map[string]string)
	for _, field := range c.fields {
		c.seedDefault(field)
	}
	c.logger.Debug("values reset")
}

// InsertStructuralBlock inserts a header, subheader or spacer at position at.
// A negative position inserts first and a position past the end appends. Any
// open edit is cancelled.
func (c *Controller) InsertStructuralBlock(at int, block model.Block) (model.FieldSchema, error) {
	field, err := model.NewBlock(block, c.lastID+1)
	if err != nil {
		return model.FieldSchema{}, fmt.Errorf("session: insert block: %w", err)
	}
	if c.editing != 0 {
		c.logger.Debug("edit cancelled", zap.Int("id", c.editing))
		c.editing = 0
	}
	field.ID = c.nextID()

	at = max(0, min(at, len(c.fields)))
	c.fields = slices.Insert(c.fields, at, field)
	c.rebuildIndex()
	c.logger.Debug("block inserted", zap.Int("id", field.ID), zap.String("block", string(block)), zap.Int("at", at))
	return field.Clone(), nil
}

// ApplyErrors merges externally produced messages into the error map. An
// empty message clears the field's error. Names that match no value-bearing
// field are returned sorted and otherwise ignored.
func (c *Controller) ApplyErrors(errs map[string]string) []string {
	var unknown []string
	for name, message := range errs {
		if !c.hasValueField(name) {
			unknown = append(unknown, name)
			continue
		}
		if message == "" {
			delete(c.errors, name)
			continue
		}
		c.errors[name] = message
	}
	sort.Strings(unknown)
	return unknown
}

// Snapshot returns a deep copy of the session state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Fields:    cloneFields(c.fields),
		Values:    cloneMap(c.values),
		Errors:    cloneMap(c.errors),
		EditingID: c.editing,
		State:     c.State(),
	}
}

// Layout segments the current fields for viewport.
func (c *Controller) Layout(viewport layout.Viewport) []layout.Row {
	return layout.Segment(cloneFields(c.fields), viewport)
}

func (c *Controller) nextID() int {
	c.lastID++
	return c.lastID
}

func (c *Controller) indexOf(id int) int {
	for i, field := range c.fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) hasValueField(name string) bool {
	for _, field := range c.fields {
		if field.Kind.ValueBearing() && field.Name == name {
			return true
		}
	}
	return false
}

func (c *Controller) seedDefault(field model.FieldSchema) {
	if !field.Kind.ValueBearing() {
		return
	}
	if value := model.DefaultValue(field); value != "" {
		c.values[field.Name] = value
	}
}

func (c *Controller) check(field model.FieldSchema, value string) {
	if err := validation.Validate(value, field, c.values, c.fields); err != nil {
		c.errors[field.Name] = err.Error()
		return
	}
	delete(c.errors, field.Name)
}

func (c *Controller) rebuildIndex() {
	index := make(map[string][]int)
	for _, field := range c.fields {
		if !field.Kind.ValueBearing() {
			continue
		}
		if target := strings.TrimSpace(field.Rules.MatchField); target != "" {
			index[target] = append(index[target], field.ID)
		}
	}
	c.dependents = index
}

// maskValue shapes raw input with the field's mask. Number and date inputs
// are left untouched.
func maskValue(field model.FieldSchema, raw string) string {
	if field.Mask == mask.None {
		return raw
	}
	switch field.Kind {
	case model.KindNumber, model.KindDate, model.KindDatetime:
		return raw
	}
	var opts []mask.Option
	if field.Kind == model.KindTextarea {
		opts = append(opts, mask.WithMultiline())
	}
	if field.Mask == mask.Custom {
		opts = append(opts, mask.WithPattern(field.Rules.Pattern))
	}
	return mask.Apply(field.Mask, raw, opts...)
}

func cloneFields(fields []model.FieldSchema) []model.FieldSchema {
	out := make([]model.FieldSchema, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
