// Package guard decides whether a principal may change an owned record.
//
// Existence is the caller's concern: load the record first (inside the
// same unit of work as the mutation) and report common.ErrorNotFound when it
// is missing, then call Authorize.
package guard

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
)

// Principal is the acting user of a request.
type Principal struct {
	UserID     int64
	SteamID    string
	Admin      bool
	SuperAdmin bool
}

// Elevated reports whether p may act on records owned by anyone.
func (p Principal) Elevated() bool { return p.SuperAdmin }

// Owned is a record with exactly one owning user.
type Owned interface {
	OwnerID() int64
}

// Authorize returns nil when p owns rec or is elevated, and
// common.ErrorForbidden otherwise.
func Authorize(p Principal, rec Owned) error {
	if p.Elevated() || rec.OwnerID() == p.UserID {
		return nil
	}
	return common.ErrorForbidden
}

// AuthorizeOwnerChange is Authorize plus the rule that only an elevated
// principal may hand a record to another owner. newOwner nil means the
// owner stays the same.
func AuthorizeOwnerChange(p Principal, rec Owned, newOwner *int64) error {
	if err := Authorize(p, rec); err != nil {
		return err
	}
	if newOwner != nil && *newOwner != rec.OwnerID() && !p.Elevated() {
		return common.ErrorForbidden
	}
	return nil
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
