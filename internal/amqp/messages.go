package amqp

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by ledger events.
const (
	EntityCase    = "case"
	EntityPayment = "payment"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEventMessage announces a committed mutation on a tenant's ledger.
// It carries only identifiers; consumers that need the full record read it
// from the tenant's store.
type LedgerEventMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Tenant    string    `json:"tenant"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(entity, action string, id int64, tenant string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Tenant:    tenant,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
