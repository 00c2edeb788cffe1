package memory

import (
	"context"

	"gorm.io/gorm"

	"blogsphere/internal/model"
)

type settingsRepo struct {
	s *Store
}

func (r *settingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	settings := *r.s.settings
	return &settings, nil
}

func (r *settingsRepo) Save(ctx context.Context, settings *model.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.clock()
	settings.ID = model.SettingsID
	if r.s.settings != nil {
		settings.CreatedAt = r.s.settings.CreatedAt
	} else if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	stored := *settings
	r.s.settings = &stored
	return nil
}
