package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogsphere/internal/model"
)

type commentRepo struct {
	s *Store
}

func commentKey(c model.Comment) (uuid.UUID, time.Time) { return c.ID, c.CreatedAt }

func (r *commentRepo) Create(ctx context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	r.s.comments[comment.ID] = cloneComment(*comment)
	return nil
}

func (r *commentRepo) Update(ctx context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.comments[comment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	comment.CreatedAt = existing.CreatedAt
	comment.UpdatedAt = r.s.clock()
	r.s.comments[comment.ID] = cloneComment(*comment)
	return nil
}

func (r *commentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = cloneComment(c)
	return &c, nil
}

func (r *commentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Comment
	for id := range idSet(ids) {
		if c, ok := r.s.comments[id]; ok {
			out = append(out, cloneComment(c))
		}
	}
	oldestFirst(r.s, out, commentKey)
	return out, nil
}

func (r *commentRepo) FindByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	parents := idSet(parentIDs)
	var out []model.Comment
	for _, c := range r.s.comments {
		if c.ParentID == nil {
			continue
		}
		if _, ok := parents[*c.ParentID]; ok {
			out = append(out, cloneComment(c))
		}
	}
	oldestFirst(r.s, out, commentKey)
	return out, nil
}

func (r *commentRepo) FindByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	oldestFirst(r.s, out, commentKey)
	return out, nil
}

func (r *commentRepo) Recent(ctx context.Context, limit int) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Comment, 0, len(r.s.comments))
	for _, c := range r.s.comments {
		out = append(out, cloneComment(c))
	}
	newestFirst(r.s, out, commentKey)
	return limitSlice(out, limit), nil
}

func (r *commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.comments, id)
	delete(r.s.seq, id)
	return nil
}

func (r *commentRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id := range idSet(ids) {
		if _, ok := r.s.comments[id]; ok {
			delete(r.s.comments, id)
			delete(r.s.seq, id)
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) DeleteByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
			delete(r.s.seq, id)
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.comments)), nil
}

func (r *commentRepo) CountCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.comments {
		if c.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}
