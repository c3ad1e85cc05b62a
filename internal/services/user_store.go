package services

import (
	"context"

	"github.com/gendata/gendata-api/internal/models"
)

// UserStore is the persistence the services depend on. Implementations
// return store.ErrNotFound and store.ErrDuplicateLogin.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}
