package repo

import (
	"context"

	"courier/internal/api/models"

	"gorm.io/gorm"
)

// UserDirectoryRepository keeps the sender directory in the user_details table
type UserDirectoryRepository struct {
	Db *gorm.DB
}

func NewUserDirectoryRepository(db *gorm.DB) *UserDirectoryRepository {
	return &UserDirectoryRepository{Db: db}
}

// List returns entries in insertion order
func (slf *UserDirectoryRepository) List(ctx context.Context) ([]models.UserDetails, error) {
	var entries []models.UserDetails
	err := slf.Db.WithContext(ctx).Order("id asc").Find(&entries).Error
	return entries, err
}

func (slf *UserDirectoryRepository) Create(ctx context.Context, entry *models.UserDetails) error {
	return slf.Db.WithContext(ctx).Create(entry).Error
}

func (slf *UserDirectoryRepository) Delete(ctx context.Context, id uint) error {
	return slf.Db.WithContext(ctx).Delete(&models.UserDetails{}, id).Error
}
