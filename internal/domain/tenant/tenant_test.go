package tenant

import (
	"errors"
	"testing"

	"github.com/toneforge/toneforge/internal/domain"
)

func TestNewValid(t *testing.T) {
	k, err := New("user-1", "acct-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.String() != "user-1_acct-1" {
		t.Fatalf("unexpected key %q", k.String())
	}
}

func TestValidateRejectsBadIdentifiers(t *testing.T) {
	cases := []struct {
		name      string
		userID    string
		accountID string
	}{
		{"empty user", "", "a1"},
		{"empty account", "u1", ""},
		{"slash in user", "u/1", "a1"},
		{"backslash in account", "u1", `a\1`},
		{"dotdot in user", "..", "a1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.userID, tc.accountID)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestKeyEquality(t *testing.T) {
	a := Key{UserID: "u1", AccountID: "a1"}
	b := Key{UserID: "u1", AccountID: "a1"}
	c := Key{UserID: "u1", AccountID: "a2"}

	if a != b {
		t.Fatal("identical keys must compare equal")
	}
	if a == c {
		t.Fatal("different accounts must not compare equal")
	}
}
