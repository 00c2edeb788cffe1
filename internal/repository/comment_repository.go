package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogsphere/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error)
	// FindByParentIDs returns the direct replies of every listed comment.
	FindByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]model.Comment, error)
	FindByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	Recent(ctx context.Context, limit int) ([]model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByIDs and DeleteByPostID return how many records were removed.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteByPostID(ctx context.Context, postID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountCreatedBefore(ctx context.Context, t time.Time) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("parent_id IN ?", parentIDs).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) FindByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Recent(ctx context.Context, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{}).Error
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) DeleteByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Count(&count).Error
	return count, err
}

func (r *commentRepository) CountCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("created_at < ?", t).Count(&count).Error
	return count, err
}
