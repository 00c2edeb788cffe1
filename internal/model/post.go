package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category groups posts by topic.
type Category string

const (
	CategoryTech      Category = "tech"
	CategoryLifestyle Category = "lifestyle"
	CategoryEducation Category = "education"
	CategoryHealth    Category = "health"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryTech, CategoryLifestyle, CategoryEducation, CategoryHealth}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// Post is an article authored by a user.
// Likes holds the set of users who liked the post, Comments the ordered top-level comment ids.
type Post struct {
	ID        uuid.UUID                      `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string                         `json:"title" gorm:"size:255;not null"`
	Content   string                         `json:"content" gorm:"type:text;not null"`
	Category  Category                       `json:"category" gorm:"type:varchar(20);not null;index"`
	Slug      string                         `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Image     string                         `json:"image,omitempty" gorm:"size:1024"`
	Status    PostStatus                     `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	AuthorID  uuid.UUID                      `json:"author" gorm:"type:char(36);not null;index"`
	Likes     datatypes.JSONSlice[uuid.UUID] `json:"likes"`
	Comments  datatypes.JSONSlice[uuid.UUID] `json:"comments"`
	CreatedAt time.Time                      `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Published reports whether the post is visible to every reader.
func (p *Post) Published() bool {
	return p.Status == PostStatusPublished
}
