package repository

import (
	"context"
	"fmt"

	"wanderlust/listings-service/internal/app/listings/entity"
	"wanderlust/pkg/metrics"

	"gorm.io/gorm"
)

// userRepository читает таблицу users провайдера идентификации через GORM
// Только чтение: записи в таблицу делает сам провайдер
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает справочник пользователей
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByIDs загружает профили одним запросом
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]entity.UserProfile, error) {
	profiles := make(map[string]entity.UserProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	var users []entity.UserProfile
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	timer.Done(result.Error)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get users: %w", result.Error)
	}

	for _, u := range users {
		profiles[u.ID] = u
	}

	return profiles, nil
}
