package session

import "errors"

var (
	// ErrDraftBound is returned when AddField receives a draft loaded from an
	// existing field.
	ErrDraftBound = errors.New("session: draft is bound to an existing field")
	// ErrNotEditing is returned by SaveEdit and CancelEdit outside an edit.
	ErrNotEditing = errors.New("session: no field is being edited")
	// ErrEditInProgress is returned when another field is already being edited.
	ErrEditInProgress = errors.New("session: another field is being edited")
	// ErrFieldBeingEdited is returned when deleting or replacing the field
	// that is currently being edited.
	ErrFieldBeingEdited = errors.New("session: field is being edited")
	// ErrDraftMismatch is returned when a saved draft belongs to another field.
	ErrDraftMismatch = errors.New("session: draft does not belong to the edited field")

	ErrIndexOutOfRange = errors.New("session: index out of range")
	ErrUnknownField    = errors.New("session: unknown field")
	ErrStructuralField = errors.New("session: structural fields hold no value")
)
