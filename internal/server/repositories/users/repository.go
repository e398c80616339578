// Package users persists accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/smartstudy/internal/server/models"
)

// Repository stores users. Lookups return common.ErrorNotFound for unknown
// users; Create returns common.ErrorAlreadyExists for a taken email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
