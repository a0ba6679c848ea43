package testutil

import (
	"encoding/json"

	"jacksonjar/internal/domain"
)

type testEvent struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Account string                 `json:"account"`
	Profile *domain.AccountProfile `json:"profile"`
}

// EncodeTestEvent builds the payload FakePlatform.ParseEvent understands.
func EncodeTestEvent(ev domain.Event) []byte {
	b, _ := json.Marshal(testEvent{ID: ev.ID, Type: ev.Type, Account: ev.AccountID, Profile: ev.Profile})
	return b
}

// DecodeTestEvent reverses EncodeTestEvent.
func DecodeTestEvent(payload []byte) (*domain.Event, error) {
	var te testEvent
	if err := json.Unmarshal(payload, &te); err != nil {
		return nil, domain.ErrInvalidWebhook
	}
	return &domain.Event{ID: te.ID, Type: te.Type, AccountID: te.Account, Profile: te.Profile}, nil
}
