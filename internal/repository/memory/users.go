package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogsphere/internal/model"
)

type userRepo struct {
	s *Store
}

func userKey(u model.User) (uuid.UUID, time.Time) { return u.ID, u.CreatedAt }

func (r *userRepo) emailTaken(email string, exclude uuid.UUID) bool {
	for id, u := range r.s.users {
		if id != exclude && u.Email == email {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = model.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if r.emailTaken(user.Email, user.ID) {
		return gorm.ErrDuplicatedKey
	}
	r.s.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Email = model.NormalizeEmail(user.Email)
	if r.emailTaken(user.Email, user.ID) {
		return gorm.ErrDuplicatedKey
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.clock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.User
	for id := range idSet(ids) {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = model.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	return r.Recent(ctx, -1)
}

func (r *userRepo) Recent(ctx context.Context, limit int) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	newestFirst(r.s, out, userKey)
	return limitSlice(out, limit), nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, id)
	delete(r.s.seq, id)
	return nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *userRepo) CountCreatedBefore(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if u.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}
