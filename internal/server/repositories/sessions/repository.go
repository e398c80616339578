package sessions

import (
	"context"

	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Session, error)
	UpdateArtifacts(ctx context.Context, id int64, update models.ArtifactUpdate) (*models.Session, error)
	Delete(ctx context.Context, id, ownerID int64) error
	Claim(ctx context.Context, token string, userID int64) (*models.Session, error)
}
