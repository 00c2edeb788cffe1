package model

import "time"

// SettingsID is the fixed primary key of the site settings row.
const SettingsID = 1

// SocialLinks holds optional profile URLs shown in the site footer.
type SocialLinks struct {
	Twitter   string `json:"twitter" gorm:"size:255"`
	Facebook  string `json:"facebook" gorm:"size:255"`
	Instagram string `json:"instagram" gorm:"size:255"`
}

// Settings is the site-wide configuration singleton.
type Settings struct {
	ID                 uint        `json:"-" gorm:"primaryKey;autoIncrement:false"`
	SiteName           string      `json:"siteName" gorm:"size:255"`
	SiteDescription    string      `json:"siteDescription" gorm:"size:1024"`
	ContactEmail       string      `json:"contactEmail" gorm:"size:255"`
	EnableRegistration bool        `json:"enableRegistration"`
	MaintenanceMode    bool        `json:"maintenanceMode"`
	FooterText         string      `json:"footerText" gorm:"size:1024"`
	SocialLinks        SocialLinks `json:"socialLinks" gorm:"embedded;embeddedPrefix:social_"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// DefaultSettings returns the values used when the singleton is first created.
func DefaultSettings() Settings {
	return Settings{
		ID:                 SettingsID,
		SiteName:           "My Blog",
		SiteDescription:    "A modern blog powered by React and Node.js",
		ContactEmail:       "contact@example.com",
		EnableRegistration: true,
		MaintenanceMode:    false,
		FooterText:         "© 2023 My Blog. All rights reserved.",
	}
}
