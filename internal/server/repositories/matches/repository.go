// Package matches reads contest records written by the match runner.
package matches

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	ListRecentByTeam(ctx context.Context, teamID int64, limit int) ([]*models.Match, error)
	// FirstMap returns the map with the lowest map number, or
	// common.ErrorNotFound when no map has been recorded.
	FirstMap(ctx context.Context, matchID int64) (*models.MapScore, error)
}
