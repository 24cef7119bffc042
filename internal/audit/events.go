// Package audit emits structured events for the verification lifecycle.
// Events are observability output, not the on-chain audit anchor: losing one
// degrades monitoring, never correctness, so the publisher prefers dropping
// over blocking a request.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind names a lifecycle event.
type Kind string

const (
	EventRequestCreated     Kind = "verification.request_created"
	EventPresentationResult Kind = "verification.presentation_result"
	EventAnchorSubmitted    Kind = "verification.anchor_submitted"
	EventAnchorFailed       Kind = "verification.anchor_failed"
)

// Event is one audit record. Fields that do not apply to a kind stay empty.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	At        time.Time `json:"at"`
	RequestID string    `json:"request_id,omitempty"`
	ContextID string    `json:"context_id,omitempty"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Result    string    `json:"result,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// NewEvent stamps id and timestamp.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, At: at}
}
