package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatch_State(t *testing.T) {
	now := time.Now()

	assert.Equal(t, MatchOngoing, (&Match{}).State())
	assert.Equal(t, MatchOngoing, (&Match{StartTime: &now}).State())
	assert.Equal(t, MatchFinished, (&Match{StartTime: &now, EndTime: &now}).State())
	assert.Equal(t, MatchCancelled, (&Match{EndTime: &now, Cancelled: true}).State())
}

func TestMatch_HasTeam(t *testing.T) {
	one, two := int64(1), int64(2)
	m := &Match{Team1ID: &one, Team2ID: &two}

	assert.True(t, m.HasTeam(1))
	assert.True(t, m.HasTeam(2))
	assert.False(t, m.HasTeam(3))
	assert.False(t, (&Match{}).HasTeam(1))
}

func TestOwnerIDs(t *testing.T) {
	assert.Equal(t, int64(7), (&User{ID: 7}).OwnerID())
	assert.Equal(t, int64(8), (&Server{ID: 1, UserID: 8}).OwnerID())
	assert.Equal(t, int64(9), (&Team{ID: 1, UserID: 9}).OwnerID())
}

func TestUpdatesEmpty(t *testing.T) {
	name := "x"
	assert.True(t, ServerUpdate{}.Empty())
	assert.False(t, ServerUpdate{DisplayName: &name}.Empty())
	assert.True(t, TeamUpdate{}.Empty())
	assert.False(t, TeamUpdate{Name: &name}.Empty())
}
