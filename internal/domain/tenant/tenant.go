// Package tenant defines the tenant identity for style-adaptation lifecycles.
package tenant

import (
	"fmt"
	"strings"

	"github.com/toneforge/toneforge/internal/domain"
)

// Key identifies one independent adaptation lifecycle. Two tenants are the
// same iff both UserID and AccountID match.
type Key struct {
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
}

// New builds a validated tenant key.
func New(userID, accountID string) (Key, error) {
	k := Key{UserID: userID, AccountID: accountID}
	return k, k.Validate()
}

// Validate checks that both identifier parts are present and safe to use in
// storage keys and filesystem paths.
func (k Key) Validate() error {
	if k.UserID == "" {
		return fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	if k.AccountID == "" {
		return fmt.Errorf("%w: accountId is required", domain.ErrValidation)
	}
	for _, part := range []string{k.UserID, k.AccountID} {
		if strings.ContainsAny(part, `/\`) || strings.Contains(part, "..") {
			return fmt.Errorf("%w: identifier must not contain path separators", domain.ErrValidation)
		}
	}
	return nil
}

// String returns the canonical flat key "userID_accountID" used for cache
// keys, artifact directories and log fields.
func (k Key) String() string {
	return k.UserID + "_" + k.AccountID
}
