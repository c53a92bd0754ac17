package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	steamA = "76561197960287930"
	steamB = "76561197969249709"
)

func newReconciler() (*RosterReconciler, *fakeResolver) {
	res := &fakeResolver{aliases: map[string]string{
		"STEAM_0:1:4491990": steamB,
		"gaben":             steamA,
	}}
	return NewRosterReconciler(res, logging.Nop()), res
}

func TestReconcile_InsertsThenUpdates(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()
	ctx := context.Background()

	target := map[string]string{steamA: "Alice", steamB: "Bob"}

	sum, err := r.Reconcile(ctx, repo, 7, target)
	require.NoError(t, err)
	assert.Equal(t, RosterSummary{Inserted: 2}, sum)

	sum, err = r.Reconcile(ctx, repo, 7, target)
	require.NoError(t, err)
	assert.Equal(t, RosterSummary{Updated: 2}, sum)

	assert.Equal(t, map[string]string{steamA: "Alice", steamB: "Bob"}, repo.rows[7])
}

func TestReconcile_IsIdempotent(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()
	ctx := context.Background()

	target := map[string]string{"gaben": "G", "STEAM_0:1:4491990": " Bob "}
	for i := 0; i < 3; i++ {
		_, err := r.Reconcile(ctx, repo, 1, target)
		require.NoError(t, err)
	}

	assert.Equal(t, map[string]string{steamA: "G", steamB: "Bob"}, repo.rows[1])
	assert.Equal(t, 2, repo.inserts)
}

func TestReconcile_KeepsOtherEntries(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()
	repo.rows[1] = map[string]string{steamA: "Old"}

	_, err := r.Reconcile(context.Background(), repo, 1, map[string]string{steamB: "New"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{steamA: "Old", steamB: "New"}, repo.rows[1])
}

func TestReconcile_AliasesCollapseToOneRow(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()

	// Both keys resolve to steamB; keys are applied in sorted order.
	sum, err := r.Reconcile(context.Background(), repo, 1, map[string]string{
		"STEAM_0:1:4491990": "first",
		steamB:              "second",
	})
	require.NoError(t, err)

	assert.Equal(t, RosterSummary{Inserted: 1, Updated: 1}, sum)
	assert.Equal(t, map[string]string{steamB: "first"}, repo.rows[1])
}

func TestReconcile_InvalidIdentityAborts(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()

	_, err := r.Reconcile(context.Background(), repo, 1, map[string]string{"!!": "x"})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, repo.rows[1])
}

func TestReconcile_EmptyTargetIsNoop(t *testing.T) {
	r, res := newReconciler()
	repo := newMemMembers()

	sum, err := r.Reconcile(context.Background(), repo, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, RosterSummary{}, sum)
	assert.Zero(t, res.calls)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "\u00e9", normalizeName("  e\u0301 "))
	assert.Equal(t, "", normalizeName("   "))
}

func TestRemoveMember(t *testing.T) {
	r, _ := newReconciler()
	repo := newMemMembers()
	repo.rows[1] = map[string]string{steamA: "A", steamB: "B"}
	ctx := context.Background()

	require.NoError(t, r.RemoveMember(ctx, repo, 1, "gaben"))
	assert.Equal(t, map[string]string{steamB: "B"}, repo.rows[1])

	assert.ErrorIs(t, r.RemoveMember(ctx, repo, 1, steamA), common.ErrorNotFound)
	assert.ErrorIs(t, r.RemoveMember(ctx, repo, 1, "??"), common.ErrorValidation)
}
