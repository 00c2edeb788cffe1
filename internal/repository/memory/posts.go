package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

type postRepo struct {
	s *Store
}

func postKey(p model.Post) (uuid.UUID, time.Time) { return p.ID, p.CreatedAt }

func (r *postRepo) slugTaken(slug string, exclude uuid.UUID) bool {
	for id, p := range r.s.posts {
		if id != exclude && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(post.Slug, post.ID) {
		return gorm.ErrDuplicatedKey
	}
	if post.Status == "" {
		post.Status = model.PostStatusDraft
	}
	r.s.stamp(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *postRepo) Update(ctx context.Context, post *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return gorm.ErrDuplicatedKey
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = r.s.clock()
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *postRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r *postRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.posts {
		if p.Slug == slug {
			p = clonePost(p)
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *postRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Post
	for id := range idSet(ids) {
		if p, ok := r.s.posts[id]; ok {
			out = append(out, clonePost(p))
		}
	}
	return out, nil
}

func (r *postRepo) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.slugTaken(slug, exclude), nil
}

func (r *postRepo) List(ctx context.Context, q repository.PostQuery) ([]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.AuthorID != uuid.Nil && p.AuthorID != q.AuthorID {
			continue
		}
		if q.Status != "" && p.Status != q.Status {
			continue
		}
		out = append(out, clonePost(p))
	}
	newestFirst(r.s, out, postKey)
	return out, nil
}

func (r *postRepo) Recent(ctx context.Context, limit int) ([]model.Post, error) {
	posts, err := r.List(ctx, repository.PostQuery{})
	if err != nil {
		return nil, err
	}
	return limitSlice(posts, limit), nil
}

func (r *postRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.posts, id)
	delete(r.s.seq, id)
	return nil
}

func (r *postRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.posts)), nil
}

func (r *postRepo) CountCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.posts {
		if p.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}
