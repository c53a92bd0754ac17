package users

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetBySteamID(ctx context.Context, steamID string) (*models.User, error)
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) error
}
