// Package identity maps user-supplied player identities to canonical
// SteamID64 strings and looks up public profile data.
package identity

import "context"

// Resolver is the external identity provider.
//
// ResolveCanonicalIdentity returns common.ErrorValidation for input that
// cannot name a player and common.ErrIdentityLookupFailed when the provider
// could not be reached. The Lookup methods return an empty string when the
// profile has no such field.
type Resolver interface {
	ResolveCanonicalIdentity(ctx context.Context, raw string) (string, error)
	LookupDisplayName(ctx context.Context, canonical string) (string, error)
	LookupAvatar(ctx context.Context, canonical string) (string, error)
}
