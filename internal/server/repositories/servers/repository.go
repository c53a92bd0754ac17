package servers

import (
	"context"

	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

// SecretRef is a stored RCON password blob and the server it belongs to.
type SecretRef struct {
	ID   int64
	Blob string
}

type Repository interface {
	Create(ctx context.Context, s *models.Server) (*models.Server, error)
	GetByID(ctx context.Context, id int64) (*models.Server, error)
	GetForUpdate(ctx context.Context, id int64) (*models.Server, error)
	List(ctx context.Context) ([]*models.Server, error)
	ListVisible(ctx context.Context, userID int64) ([]*models.Server, error)
	Update(ctx context.Context, id int64, upd models.ServerUpdate) error
	Delete(ctx context.Context, id int64) error
	ListSecretsForUpdate(ctx context.Context) ([]SecretRef, error)
	SetSecret(ctx context.Context, id int64, blob string) error
}
