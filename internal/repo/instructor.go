package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/coursehub/auth-service/internal/models"
)

func (r *GormRepo) FindInstructorByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&instructor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &instructor, nil
}
