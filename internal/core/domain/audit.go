package domain

import "time"

// AccountEventType is the kind of mutation recorded in the audit trail.
type AccountEventType string

const (
	EventAccountCreated         AccountEventType = "account_created"
	EventAccountUpdated         AccountEventType = "account_updated"
	EventAccountPasswordChanged AccountEventType = "account_password_changed"
	EventAccountDeleted         AccountEventType = "account_deleted"
)

// AccountEvent is an append-only audit record. ActorID is zero for
// self-service signup and startup bootstrap.
type AccountEvent struct {
	Type      AccountEventType `json:"type" bson:"type"`
	AccountID int64            `json:"account_id" bson:"account_id"`
	Username  string           `json:"username" bson:"username"`
	ActorID   int64            `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	At        time.Time        `json:"at" bson:"at"`
}
