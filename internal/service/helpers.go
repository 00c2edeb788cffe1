package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

// lookupErr turns a repository read failure into a domain error.
func lookupErr(err error, notFound, failed string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFound)
	}
	return apperrors.Store(failed, err)
}

// parseID parses a path or query identifier, reporting malformed input as a validation error.
func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + field)
	}
	return id, nil
}

// ParseID is parseID for handlers.
func ParseID(raw, field string) (uuid.UUID, error) {
	return parseID(raw, field)
}

// toggleID removes id from the set when present and appends it otherwise.
func toggleID(ids datatypes.JSONSlice[uuid.UUID], id uuid.UUID) datatypes.JSONSlice[uuid.UUID] {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

// removeID drops every occurrence of id, reporting whether anything was removed.
func removeID(ids datatypes.JSONSlice[uuid.UUID], id uuid.UUID) (datatypes.JSONSlice[uuid.UUID], bool) {
	out := make(datatypes.JSONSlice[uuid.UUID], 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out, len(out) != len(ids)
}

// authorRefs resolves user ids to display refs with one batched lookup.
func authorRefs(ctx context.Context, users repository.UserRepository, ids []uuid.UUID) (map[uuid.UUID]model.AuthorRef, error) {
	refs := make(map[uuid.UUID]model.AuthorRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		refs[u.ID] = model.AuthorRef{ID: u.ID, Name: u.Name}
	}
	return refs, nil
}
