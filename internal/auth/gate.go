package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/model"
)

var (
	// ErrMissingToken is returned when no bearer credential is presented.
	ErrMissingToken = apperrors.Unauthenticated("no token found")
	// ErrInvalidToken is returned for bad signatures, expiry, malformed subjects and revoked tokens.
	ErrInvalidToken = apperrors.Unauthenticated("invalid token")
	// ErrAuthenticationRequired is returned by Authorize when no identity is present.
	ErrAuthenticationRequired = apperrors.Unauthenticated("authentication required")
)

// Identity is the authenticated caller.
type Identity struct {
	UserID    uuid.UUID  `json:"userId"`
	Role      model.Role `json:"role"`
	TokenID   string     `json:"-"`
	ExpiresAt time.Time  `json:"-"`
}

// IsAdmin reports whether the caller has the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// Gate resolves bearer tokens to identities and checks roles.
type Gate struct {
	jwt    *JWTService
	tokens TokenStoreInterface
}

// NewGate builds a gate. tokens may be nil when revocation is not used.
func NewGate(jwt *JWTService, tokens TokenStoreInterface) *Gate {
	return &Gate{jwt: jwt, tokens: tokens}
}

// Authenticate verifies a raw token. A leading "Bearer " prefix is tolerated.
// A token without a role claim gets RoleUser.
func (g *Gate) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if rest, ok := strings.CutPrefix(token, "Bearer"); ok && (rest == "" || rest[0] == ' ') {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if g.tokens != nil && claims.ID != "" {
		revoked, _ := g.tokens.IsRevoked(ctx, claims.ID)
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}

	identity := &Identity{UserID: userID, Role: role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Authorize checks that identity holds one of roles.
func Authorize(identity *Identity, roles ...model.Role) error {
	if identity == nil {
		return ErrAuthenticationRequired
	}
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden(fmt.Sprintf("Access denied. Role '%s' is not authorized to access this resource.", identity.Role))
}
