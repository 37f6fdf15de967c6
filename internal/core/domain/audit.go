package domain

import (
	"errors"
	"time"
)

// ChangeKind classifies the mutation an audit entry records.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

var ErrEmptyAuditPayload = errors.New("audit payload must not be empty")

// Actor identifies the account responsible for a mutation. Username and
// Email are denormalized into each entry at write time so the trail can
// display who acted without joining against accounts that may since have
// changed or been deleted.
type Actor struct {
	ID       string
	Username string
	Email    string
}

// ActorFromUser builds an Actor from a live account, used when a mutation
// is self-service (actor = subject).
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Valid reports whether k is one of the three enumerated kinds.
func (k ChangeKind) Valid() bool {
	return k == ChangeCreate || k == ChangeUpdate || k == ChangeDelete
}

// FieldChange captures one field-level mutation inside an update entry,
// holding both the prior and the new value so a reader can reconstruct the
// change without consulting earlier entries.
type FieldChange struct {
	From any `json:"from" bson:"from"`
	To   any `json:"to" bson:"to"`
}

// AuditEntry is one immutable record of a mutation to a User. SubjectID and
// ActorID are opaque historical identifiers, not foreign keys: they are kept
// verbatim even after the referenced account is deleted.
type AuditEntry struct {
	ID            string         `json:"id"`
	SubjectID     string         `json:"subjectId"`
	ActorID       string         `json:"changedBy"`
	ActorUsername string         `json:"changedByUsername,omitempty"`
	ActorEmail    string         `json:"changedByEmail,omitempty"`
	Kind          ChangeKind     `json:"changeType"`
	Changes       map[string]any `json:"changes"`
	CreatedAt     time.Time      `json:"createdAt"`
}
