package models

import "time"

// Outbox entry states.
const (
	OutboxPending = "pending"
	OutboxDone    = "done"
	OutboxFailed  = "failed"
)

// OutboxEntry is the durable intent record written alongside a placed
// order. The dispatch worker drains pending entries and performs the
// best-effort side effects (invoice, email, delivery webhook) with retry.
type OutboxEntry struct {
	EntryID   string    `json:"entryId" bson:"entryId"`
	OrderID   string    `json:"orderId" bson:"orderId"`
	Kind      string    `json:"kind" bson:"kind"`
	Status    string    `json:"status" bson:"status"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	LastError string    `json:"lastError,omitempty" bson:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
