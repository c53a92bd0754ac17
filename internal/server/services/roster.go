package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/identity"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/members"
	"golang.org/x/text/unicode/norm"
)

// RosterSummary counts the rows a reconciliation touched.
type RosterSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// RosterReconciler upserts roster entries. It must run inside a unit of
// work: repo is expected to be bound to the active transaction.
type RosterReconciler struct {
	resolver identity.Resolver
	logger   logging.Logger
}

func NewRosterReconciler(resolver identity.Resolver, logger logging.Logger) *RosterReconciler {
	return &RosterReconciler{resolver: resolver, logger: logger}
}

// normalizeName trims and NFC-normalizes a display name, so visually equal
// names are stored as equal strings.
func normalizeName(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Reconcile makes every entry of target present for teamID with the given
// name. Keys are raw identities and are resolved to canonical ids first.
// Existing entries not in target are left alone. Entries are processed in
// key order so that two raw keys resolving to the same canonical id always
// end with the same name.
func (r *RosterReconciler) Reconcile(ctx context.Context, repo members.Repository, teamID int64, target map[string]string) (RosterSummary, error) {
	var sum RosterSummary

	keys := make([]string, 0, len(target))
	for k := range target {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		auth, err := r.resolver.ResolveCanonicalIdentity(ctx, raw)
		if err != nil {
			return RosterSummary{}, fmt.Errorf("roster entry %q: %w", raw, err)
		}
		name := normalizeName(target[raw])

		n, err := repo.UpdateName(ctx, teamID, auth, name)
		if err != nil {
			return RosterSummary{}, err
		}
		if n > 0 {
			sum.Updated++
			continue
		}
		if err := repo.Insert(ctx, teamID, auth, name); err != nil {
			return RosterSummary{}, err
		}
		sum.Inserted++
	}

	r.logger.Debug(ctx, "roster reconciled", "team_id", teamID, "inserted", sum.Inserted, "updated", sum.Updated)
	return sum, nil
}

// RemoveMember deletes the entry for rawIdentity. A missing entry is
// common.ErrorNotFound.
func (r *RosterReconciler) RemoveMember(ctx context.Context, repo members.Repository, teamID int64, rawIdentity string) error {
	auth, err := r.resolver.ResolveCanonicalIdentity(ctx, rawIdentity)
	if err != nil {
		return err
	}
	n, err := repo.Delete(ctx, teamID, auth)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
