// Package members stores team roster entries (team_auth_names).
package members

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type Repository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]models.Member, error)
	// UpdateName sets the name of an existing entry and returns the number of
	// rows it changed (0 when the entry does not exist).
	UpdateName(ctx context.Context, teamID int64, auth, name string) (int64, error)
	Insert(ctx context.Context, teamID int64, auth, name string) error
	Delete(ctx context.Context, teamID int64, auth string) (int64, error)
	DeleteByTeam(ctx context.Context, teamID int64) (int64, error)
}
