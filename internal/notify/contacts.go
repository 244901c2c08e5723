// internal/notify/contacts.go
package notify

import (
	"context"
	"fmt"
)

// StaticContacts resolves applicant email addresses from a configured map.
// Used when no directory integration is wired; unknown users are simply
// unreachable, which the dispatcher logs and skips.
type StaticContacts struct {
	contacts map[string]string
}

func NewStaticContacts(contacts map[string]string) *StaticContacts {
	return &StaticContacts{contacts: contacts}
}

func (s *StaticContacts) Resolve(_ context.Context, userID string) (string, error) {
	email, ok := s.contacts[userID]
	if !ok {
		return "", fmt.Errorf("no contact address for user %s", userID)
	}
	return email, nil
}
