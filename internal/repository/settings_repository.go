package repository

import (
	"context"

	"gorm.io/gorm"

	"blogsphere/internal/model"
)

// SettingsRepository persists the site settings singleton.
type SettingsRepository interface {
	// Get returns gorm.ErrRecordNotFound until the singleton has been saved once.
	Get(ctx context.Context) (*model.Settings, error)
	// Save inserts or replaces the singleton.
	Save(ctx context.Context, settings *model.Settings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	if err := r.db.WithContext(ctx).Where("id = ?", model.SettingsID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	settings.ID = model.SettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
