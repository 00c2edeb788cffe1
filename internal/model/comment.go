package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Comment is a node in a post's discussion tree.
// PostID is inherited from the parent at every depth and never changes.
type Comment struct {
	ID        uuid.UUID                      `json:"id" gorm:"type:char(36);primaryKey"`
	PostID    uuid.UUID                      `json:"blog" gorm:"type:char(36);not null;index"`
	UserID    uuid.UUID                      `json:"user" gorm:"type:char(36);not null;index"`
	Content   string                         `json:"content" gorm:"type:text;not null"`
	Likes     datatypes.JSONSlice[uuid.UUID] `json:"likes"`
	ParentID  *uuid.UUID                     `json:"parentComment" gorm:"type:char(36);index"`
	Replies   datatypes.JSONSlice[uuid.UUID] `json:"replies"`
	Depth     int                            `json:"depth" gorm:"not null;default:0"`
	CreatedAt time.Time                      `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time                      `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TopLevel reports whether the comment hangs directly off its post.
func (c *Comment) TopLevel() bool {
	return c.ParentID == nil
}
