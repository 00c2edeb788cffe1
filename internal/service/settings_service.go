package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"gorm.io/gorm"

	"blogsphere/internal/cache"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

const (
	settingsCacheKey = "settings:site"
	settingsCacheTTL = 10 * time.Minute
)

// SettingsPatch carries the fields an admin wants to change. Nil fields keep their value.
type SettingsPatch struct {
	SiteName           *string           `json:"siteName"`
	SiteDescription    *string           `json:"siteDescription"`
	ContactEmail       *string           `json:"contactEmail"`
	EnableRegistration *bool             `json:"enableRegistration"`
	MaintenanceMode    *bool             `json:"maintenanceMode"`
	FooterText         *string           `json:"footerText"`
	SocialLinks        *SocialLinksPatch `json:"socialLinks"`
}

// SocialLinksPatch is the partial form of model.SocialLinks.
type SocialLinksPatch struct {
	Twitter   *string `json:"twitter"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
}

// SettingsService reads and writes the site configuration singleton.
type SettingsService interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, patch SettingsPatch) (*model.Settings, error)
}

type settingsService struct {
	repo  repository.SettingsRepository
	cache *cache.Client
	log   logging.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(repo repository.SettingsRepository, cache *cache.Client, log logging.Logger) SettingsService {
	return &settingsService{repo: repo, cache: cache, log: log.With("component", "settings")}
}

// Get returns the settings, creating the singleton with defaults on first access.
func (s *settingsService) Get(ctx context.Context) (*model.Settings, error) {
	var cached model.Settings
	if s.cache.GetJSON(ctx, settingsCacheKey, &cached) {
		return &cached, nil
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, settingsCacheKey, settings, settingsCacheTTL)
	return settings, nil
}

// Update applies patch on top of the stored settings and upserts the result.
func (s *settingsService) Update(ctx context.Context, patch SettingsPatch) (*model.Settings, error) {
	if patch.ContactEmail != nil && *patch.ContactEmail != "" {
		if _, err := mail.ParseAddress(*patch.ContactEmail); err != nil {
			return nil, apperrors.Validation("contactEmail must be a valid email address")
		}
	}

	settings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	patch.apply(settings)

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, apperrors.Store("Failed to update settings", err)
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.log.Warn(ctx, "settings cache invalidation failed", "key", settingsCacheKey, "error", err)
	}
	return settings, nil
}

func (s *settingsService) load(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Store("Failed to fetch settings", err)
	}

	defaults := model.DefaultSettings()
	if err := s.repo.Save(ctx, &defaults); err != nil {
		return nil, apperrors.Store("Failed to fetch settings", err)
	}
	return &defaults, nil
}

func (p SettingsPatch) apply(s *model.Settings) {
	setString(&s.SiteName, p.SiteName)
	setString(&s.SiteDescription, p.SiteDescription)
	setString(&s.ContactEmail, p.ContactEmail)
	setString(&s.FooterText, p.FooterText)
	if p.EnableRegistration != nil {
		s.EnableRegistration = *p.EnableRegistration
	}
	if p.MaintenanceMode != nil {
		s.MaintenanceMode = *p.MaintenanceMode
	}
	if p.SocialLinks != nil {
		setString(&s.SocialLinks.Twitter, p.SocialLinks.Twitter)
		setString(&s.SocialLinks.Facebook, p.SocialLinks.Facebook)
		setString(&s.SocialLinks.Instagram, p.SocialLinks.Instagram)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
