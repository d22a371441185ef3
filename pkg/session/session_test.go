package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/mask"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/session"
)

func textDraft(name, label string) model.FieldDraft {
	d := model.CreateDraft(model.KindText)
	d.Name = name
	d.Label = label
	return d
}

func newController(t *testing.T, drafts ...model.FieldDraft) *session.Controller {
	t.Helper()
	c, err := session.New(session.WithFields(drafts))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func names(fields []model.FieldSchema) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func TestChangeValue_MatchFieldPropagation(t *testing.T) {
	pwd := model.CreateDraft(model.KindPassword)
	pwd.Name, pwd.Label = "pwd", "Password"
	confirm := model.CreateDraft(model.KindPassword)
	confirm.Name, confirm.Label = "confirm", "Confirm"
	confirm.Rules.MatchField = "pwd"

	c := newController(t, pwd, confirm)
	snap := c.Snapshot()
	pwdID, confirmID := snap.Fields[0].ID, snap.Fields[1].ID

	if _, err := c.ChangeValue(pwdID, "abc"); err != nil {
		t.Fatalf("change pwd: %v", err)
	}
	if _, err := c.ChangeValue(confirmID, "abd"); err != nil {
		t.Fatalf("change confirm: %v", err)
	}
	if got := c.Snapshot().Errors["confirm"]; got != "Must match Password" {
		t.Fatalf("confirm error = %q", got)
	}

	if _, err := c.ChangeValue(pwdID, "abd"); err != nil {
		t.Fatalf("change pwd: %v", err)
	}
	if msg, ok := c.Snapshot().Errors["confirm"]; ok {
		t.Fatalf("confirm error should clear after propagation, got %q", msg)
	}
}

func TestChangeValue_RevalidatesEveryDependent(t *testing.T) {
	email := textDraft("email", "Email")
	again := textDraft("email_again", "Repeat email")
	again.Rules.MatchField = "email"

	c := newController(t, email, again)
	fields := c.Snapshot().Fields
	if _, err := c.ChangeValue(fields[0].ID, "a@b.co"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"email_again": "Must match Email"}, c.Snapshot().Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.ChangeValue(fields[1].ID, "a@b.co"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if errs := c.Snapshot().Errors; len(errs) != 0 {
		t.Fatalf("errors after matching value: %v", errs)
	}
}

func TestChangeValue_TrimmedMatchFieldResolves(t *testing.T) {
	pwd := model.CreateDraft(model.KindPassword)
	pwd.Name, pwd.Label = "pwd", "Password"
	repeat := model.CreateDraft(model.KindPassword)
	repeat.Name, repeat.Label = "repeat", "Repeat"
	repeat.Rules.MatchField = " pwd"

	c := newController(t, pwd, repeat)
	fields := c.Snapshot().Fields
	if _, err := c.ChangeValue(fields[0].ID, "secret"); err != nil {
		t.Fatalf("change pwd: %v", err)
	}
	if got := c.Error("repeat"); got != "Must match Password" {
		t.Fatalf("repeat error = %q", got)
	}
	if _, err := c.ChangeValue(fields[1].ID, "secret"); err != nil {
		t.Fatalf("change repeat: %v", err)
	}
	if got := c.Error("repeat"); got != "" {
		t.Fatalf("repeat error = %q, want none", got)
	}
}

func TestChangeValue_CheckboxMinimumSelected(t *testing.T) {
	d := model.CreateDraft(model.KindCheckboxGroup)
	d.Name, d.Label = "toppings", "Toppings"
	d.Options = []model.Option{
		{Label: "Cheese", Value: "cheese"},
		{Label: "Ham", Value: "ham"},
		{Label: "Olives", Value: "olives"},
	}
	d.SetMinValue(2)

	c := newController(t, d)
	id := c.Snapshot().Fields[0].ID

	if _, err := c.ChangeValue(id, "cheese"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if got := c.Snapshot().Errors["toppings"]; got != "Select at least 2 options" {
		t.Fatalf("error = %q", got)
	}
	if _, err := c.ChangeValue(id, "cheese,ham"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if msg, ok := c.Snapshot().Errors["toppings"]; ok {
		t.Fatalf("error should clear without submit, got %q", msg)
	}
}

func TestChangeValue_Masks(t *testing.T) {
	phone := model.CreateDraft(model.KindTel)
	phone.Name, phone.Label = "phone", "Phone"
	notes := model.CreateDraft(model.KindTextarea)
	notes.Name, notes.Label = "notes", "Notes"
	notes.SetMask(mask.Alphanumeric)
	qty := model.CreateDraft(model.KindNumber)
	qty.Name, qty.Label = "qty", "Quantity"
	qty.Mask = mask.Decimal

	c := newController(t, phone, notes, qty)
	fields := c.Snapshot().Fields

	got := make([]string, 0, 3)
	for i, raw := range []string{"5551234567", "two words!\nok", "-1.5"} {
		value, err := c.ChangeValue(fields[i].ID, raw)
		if err != nil {
			t.Fatalf("change %s: %v", fields[i].Name, err)
		}
		got = append(got, value)
	}
	want := []string{"(555) 123-4567", "two words\nok", "-1.5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("masked values mismatch (-want +got):\n%s", diff)
	}
	if stored := c.Snapshot().Values["phone"]; stored != "(555) 123-4567" {
		t.Fatalf("stored phone = %q", stored)
	}
}

func TestChangeValue_Rejects(t *testing.T) {
	c := newController(t, textDraft("a", "A"))
	block, err := c.InsertStructuralBlock(0, model.BlockHeader)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := c.ChangeValue(block.ID, "x"); !errors.Is(err, session.ErrStructuralField) {
		t.Fatalf("structural change err = %v", err)
	}
	if _, err := c.ChangeValue(99, "x"); !errors.Is(err, session.ErrUnknownField) {
		t.Fatalf("unknown change err = %v", err)
	}
}

func TestAddField_SeedsDefaultsAndIDs(t *testing.T) {
	color := model.CreateDraft(model.KindRadioGroup)
	color.Name, color.Label = "color", "Color"
	color.Options = []model.Option{{Label: "Red", Value: "red"}, {Label: "Blue", Value: "blue", Default: true}}

	c := newController(t, textDraft("a", "A"), color)
	snap := c.Snapshot()

	if diff := cmp.Diff([]int{1, 2}, []int{snap.Fields[0].ID, snap.Fields[1].ID}); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"color": "blue"}, snap.Values); diff != "" {
		t.Fatalf("seeded values mismatch (-want +got):\n%s", diff)
	}
}

func TestAddField_Rejects(t *testing.T) {
	c := newController(t, textDraft("a", "A"))

	bound := textDraft("b", "B")
	bound.ID = 7
	if _, err := c.AddField(bound); !errors.Is(err, session.ErrDraftBound) {
		t.Fatalf("bound draft err = %v", err)
	}

	if _, err := c.AddField(textDraft("a", "Again")); !errors.Is(err, model.ErrDuplicateName) {
		t.Fatalf("duplicate err = %v", err)
	}

	radio := model.CreateDraft(model.KindRadioGroup)
	radio.Name, radio.Label = "r", "R"
	radio.Options = radio.Options[:1]
	_, err := c.AddField(radio)
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) || schemaErr.Code != model.CodeInsufficientOptions {
		t.Fatalf("radio err = %v", err)
	}
	if n := len(c.Snapshot().Fields); n != 1 {
		t.Fatalf("rejected drafts must not be appended, have %d fields", n)
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"))
	if err := c.DeleteField(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	added, err := c.AddField(textDraft("c", "C"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.ID != 3 {
		t.Fatalf("new id = %d, want 3", added.ID)
	}
	block, err := c.InsertStructuralBlock(0, model.BlockSpacer)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if block.ID != 4 || block.Name != "spacer_4" {
		t.Fatalf("block = %d %q", block.ID, block.Name)
	}
}

func TestEditFlow(t *testing.T) {
	c := newController(t, textDraft("first", "First"), textDraft("second", "Second"))
	id := c.Snapshot().Fields[0].ID
	if _, err := c.ChangeValue(id, "Ada"); err != nil {
		t.Fatalf("change: %v", err)
	}

	draft, err := c.EditField(id)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if c.State() != session.Editing || c.EditingID() != id {
		t.Fatalf("state = %s %d", c.State(), c.EditingID())
	}
	if _, err := c.EditField(c.Snapshot().Fields[1].ID); !errors.Is(err, session.ErrEditInProgress) {
		t.Fatalf("second edit err = %v", err)
	}

	draft.Name = "second"
	if _, err := c.SaveEdit(draft); !errors.Is(err, model.ErrDuplicateName) {
		t.Fatalf("duplicate save err = %v", err)
	}
	if c.State() != session.Editing {
		t.Fatalf("schema error must keep the edit open")
	}

	draft.Name = "given"
	saved, err := c.SaveEdit(draft)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != id || c.State() != session.Idle {
		t.Fatalf("saved %+v in state %s", saved, c.State())
	}
	snap := c.Snapshot()
	if diff := cmp.Diff([]string{"given", "second"}, names(snap.Fields)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"given": "Ada"}, snap.Values); diff != "" {
		t.Fatalf("value should follow rename (-want +got):\n%s", diff)
	}
}

func TestSaveEdit_SeedsDefaultOnlyWhenEmpty(t *testing.T) {
	d := model.CreateDraft(model.KindSelect)
	d.Name, d.Label = "size", "Size"
	d.Options = []model.Option{{Label: "S", Value: "s"}, {Label: "M", Value: "m"}}

	c := newController(t, d)
	id := c.Snapshot().Fields[0].ID

	draft, _ := c.EditField(id)
	draft.SetOptionDefault(1, true)
	if _, err := c.SaveEdit(draft); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := c.Snapshot().Values["size"]; got != "m" {
		t.Fatalf("empty field should receive the new default, got %q", got)
	}

	draft, _ = c.EditField(id)
	draft.SetOptionDefault(0, true)
	if _, err := c.SaveEdit(draft); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := c.Snapshot().Values["size"]; got != "m" {
		t.Fatalf("existing value must be kept, got %q", got)
	}
}

func TestEditErrors(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"))
	if err := c.CancelEdit(); !errors.Is(err, session.ErrNotEditing) {
		t.Fatalf("cancel err = %v", err)
	}
	if _, err := c.SaveEdit(textDraft("x", "X")); !errors.Is(err, session.ErrNotEditing) {
		t.Fatalf("save err = %v", err)
	}
	if _, err := c.EditField(42); !errors.Is(err, session.ErrUnknownField) {
		t.Fatalf("edit unknown err = %v", err)
	}

	if _, err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	other := textDraft("x", "X")
	other.ID = 2
	if _, err := c.SaveEdit(other); !errors.Is(err, session.ErrDraftMismatch) {
		t.Fatalf("mismatch err = %v", err)
	}
	if err := c.CancelEdit(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := c.Draft(); ok {
		t.Fatalf("no draft expected after cancel")
	}
}

func TestDeleteField_RejectedWhileEditing(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"))
	if _, err := c.ChangeValue(2, "kept"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := c.EditField(2); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := c.DeleteField(1); !errors.Is(err, session.ErrFieldBeingEdited) {
		t.Fatalf("delete err = %v", err)
	}
	if err := c.CancelEdit(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := c.DeleteField(1); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
	snap := c.Snapshot()
	if len(snap.Fields) != 1 || len(snap.Values) != 0 {
		t.Fatalf("field and value should be purged: %+v", snap)
	}
	if err := c.DeleteField(5); !errors.Is(err, session.ErrIndexOutOfRange) {
		t.Fatalf("out of range err = %v", err)
	}
}

func TestMoveField(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"), textDraft("c", "C"))

	steps := []struct {
		index int
		dir   session.Direction
		want  []string
	}{
		{0, session.Up, []string{"a", "b", "c"}},
		{2, session.Down, []string{"a", "b", "c"}},
		{0, session.Down, []string{"b", "a", "c"}},
		{2, session.Up, []string{"b", "c", "a"}},
	}
	for _, step := range steps {
		if err := c.MoveField(step.index, step.dir); err != nil {
			t.Fatalf("move %d: %v", step.index, err)
		}
		if diff := cmp.Diff(step.want, names(c.Snapshot().Fields)); diff != "" {
			t.Fatalf("move %d mismatch (-want +got):\n%s", step.index, diff)
		}
	}
	if err := c.MoveField(3, session.Up); !errors.Is(err, session.ErrIndexOutOfRange) {
		t.Fatalf("out of range err = %v", err)
	}
}

func TestInsertStructuralBlock_Positions(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"))

	if _, err := c.InsertStructuralBlock(-3, model.BlockHeader); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := c.InsertStructuralBlock(2, model.BlockSubheader); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := c.InsertStructuralBlock(99, model.BlockSpacer); err != nil {
		t.Fatalf("insert: %v", err)
	}
	want := []string{"header_3", "a", "subheader_4", "b", "spacer_5"}
	if diff := cmp.Diff(want, names(c.Snapshot().Fields)); diff != "" {
		t.Fatalf("insert positions mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.InsertStructuralBlock(0, model.Block("banner")); !errors.Is(err, model.ErrUnknownBlock) {
		t.Fatalf("unknown block err = %v", err)
	}
	if n := len(c.Snapshot().Fields); n != 5 {
		t.Fatalf("failed insert changed the form: %d fields", n)
	}
}

func TestInsertStructuralBlock_CancelsEdit(t *testing.T) {
	c := newController(t, textDraft("a", "A"))
	if _, err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := c.InsertStructuralBlock(1, model.BlockSpacer); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if c.State() != session.Idle {
		t.Fatalf("insert should cancel the open edit")
	}
}

func TestUpdateField(t *testing.T) {
	c := newController(t, textDraft("a", "A"))
	field, _ := c.Field(1)
	field.Width = model.WidthFull
	if err := c.UpdateField(field); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := c.Field(1); got.Width != model.WidthFull {
		t.Fatalf("width = %s", got.Width)
	}

	if _, err := c.EditField(1); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := c.UpdateField(field); !errors.Is(err, session.ErrFieldBeingEdited) {
		t.Fatalf("update while editing err = %v", err)
	}
	field.ID = 9
	if err := c.UpdateField(field); !errors.Is(err, session.ErrUnknownField) {
		t.Fatalf("update unknown err = %v", err)
	}
}

func TestSubmit(t *testing.T) {
	name := textDraft("name", "Name")
	name.Rules.Required = true
	pwd := model.CreateDraft(model.KindPassword)
	pwd.Name, pwd.Label = "pwd", "Password"
	confirm := model.CreateDraft(model.KindPassword)
	confirm.Name, confirm.Label = "confirm", "Confirm"
	confirm.Rules.MatchField = "pwd"

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c, err := session.New(
		session.WithFields([]model.FieldDraft{name, pwd, confirm}),
		session.WithClock(func() time.Time { return stamp }),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.InsertStructuralBlock(0, model.BlockHeader); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, ok := c.Submit(); ok {
		t.Fatalf("submit should fail on the empty required field")
	}
	want := map[string]string{"name": "This field is required"}
	if diff := cmp.Diff(want, c.Snapshot().Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	_, _ = c.ChangeValue(1, "Ada")
	_, _ = c.ChangeValue(2, "secret")
	_, _ = c.ChangeValue(3, "secret!")
	if _, ok := c.Submit(); ok {
		t.Fatalf("submit should fail on mismatched confirmation")
	}
	_, _ = c.ChangeValue(3, "secret")

	sub, ok := c.Submit()
	if !ok {
		t.Fatalf("submit failed: %v", c.Snapshot().Errors)
	}
	wantValues := map[string]string{"name": "Ada", "pwd": "secret", "confirm": "secret"}
	if diff := cmp.Diff(wantValues, sub.Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if !sub.SubmittedAt.Equal(stamp) || sub.ID.String() == "" || len(sub.Fields) != 4 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if errs := c.Snapshot().Errors; len(errs) != 0 {
		t.Fatalf("errors should be cleared, got %v", errs)
	}
}

func TestReset(t *testing.T) {
	d := model.CreateDraft(model.KindCheckboxGroup)
	d.Name, d.Label = "tags", "Tags"
	d.Options = []model.Option{{Label: "A", Value: "a", Default: true}, {Label: "B", Value: "b", Default: true}}
	req := textDraft("who", "Who")
	req.Rules.Required = true

	c := newController(t, d, req)
	_, _ = c.ChangeValue(1, "")
	_, _ = c.ChangeValue(2, "me")
	c.Submit()
	_, _ = c.EditField(2)

	c.Reset()
	snap := c.Snapshot()
	if diff := cmp.Diff(map[string]string{"tags": "a,b"}, snap.Values); diff != "" {
		t.Fatalf("reset values mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Errors) != 0 || snap.State != session.Editing || len(snap.Fields) != 2 {
		t.Fatalf("reset touched more than values: %+v", snap)
	}
}

func TestApplyErrors(t *testing.T) {
	c := newController(t, textDraft("email", "Email"))
	unknown := c.ApplyErrors(map[string]string{"email": "already taken", "zzz": "x", "aaa": "y"})
	if diff := cmp.Diff([]string{"aaa", "zzz"}, unknown); diff != "" {
		t.Fatalf("unknown names mismatch (-want +got):\n%s", diff)
	}
	if got := c.Snapshot().Errors["email"]; got != "already taken" {
		t.Fatalf("email error = %q", got)
	}
	c.ApplyErrors(map[string]string{"email": ""})
	if len(c.Snapshot().Errors) != 0 {
		t.Fatalf("empty message should clear the error")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	d := model.CreateDraft(model.KindSelect)
	d.Name, d.Label = "s", "S"
	c := newController(t, d)

	snap := c.Snapshot()
	snap.Fields[0].Options[0].Label = "mutated"
	snap.Values["s"] = "mutated"

	again := c.Snapshot()
	if again.Fields[0].Options[0].Label == "mutated" || again.Values["s"] == "mutated" {
		t.Fatalf("snapshot shares state with the controller")
	}
}

func TestLayout(t *testing.T) {
	c := newController(t, textDraft("a", "A"), textDraft("b", "B"))
	rows := c.Layout(layout.Large)
	if len(rows) != 1 || len(rows[0].Left) != 1 || len(rows[0].Right) != 1 {
		t.Fatalf("two half fields should share one row: %+v", rows)
	}
	if rows := c.Layout(layout.Small); len(rows) != 2 {
		t.Fatalf("small viewport rows = %d", len(rows))
	}
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c, err := session.New(
		session.WithLogger(zap.New(core)),
		session.WithFields([]model.FieldDraft{textDraft("a", "A")}),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.Submit()

	if logs.FilterMessage("field added").Len() != 1 {
		t.Fatalf("expected a field added entry, got %v", logs.All())
	}
	if logs.FilterMessage("submit accepted").Len() != 1 {
		t.Fatalf("expected a submit accepted entry, got %v", logs.All())
	}
}

func TestNew_PreloadFailure(t *testing.T) {
	_, err := session.New(session.WithFields([]model.FieldDraft{textDraft("", "No name")}))
	if !errors.Is(err, model.ErrMissingName) {
		t.Fatalf("preload err = %v", err)
	}
}

func TestAccessors(t *testing.T) {
	d := textDraft("city", "City")
	d.Rules.Required = true
	c := newController(t, d)

	if _, err := c.ChangeValue(1, ""); err != nil {
		t.Fatalf("change value: %v", err)
	}
	if got := c.Error("city"); got != "This field is required" {
		t.Fatalf("Error(city) = %q", got)
	}
	if _, err := c.ChangeValue(1, "Oslo"); err != nil {
		t.Fatalf("change value: %v", err)
	}
	if c.Value("city") != "Oslo" || c.Error("city") != "" {
		t.Fatalf("unexpected state: value=%q error=%q", c.Value("city"), c.Error("city"))
	}

	fields := c.Fields()
	fields[0].Name = "mutated"
	if c.Fields()[0].Name != "city" {
		t.Fatalf("Fields must return a copy")
	}
}
