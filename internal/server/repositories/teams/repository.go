package teams

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Team) (*models.Team, error)
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	ListByOwner(ctx context.Context, userID int64) ([]*models.Team, error)
	Update(ctx context.Context, id int64, upd models.TeamUpdate) error
	Delete(ctx context.Context, id int64) error
}
