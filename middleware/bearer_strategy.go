package middleware

import (
	"context"
	"net/http"

	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/models"
	"go.uber.org/zap"
)

// TokenVerifier checks bearer credentials
type TokenVerifier interface {
	Validate(token string) bool
	ParseSubject(token string) (string, error)
}

// UserLookup loads the account a verified credential names
type UserLookup interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
}

// BearerStrategy authenticates callers from a signed credential in the Authorization header.
// The principal carries the user's current roles, not the roles embedded at issuance.
type BearerStrategy struct {
	verifier TokenVerifier
	users    UserLookup
	logger   *zap.Logger
}

// NewBearerStrategy creates a new BearerStrategy
func NewBearerStrategy(verifier TokenVerifier, users UserLookup, logger *zap.Logger) *BearerStrategy {
	return &BearerStrategy{verifier: verifier, users: users, logger: logger}
}

// Authenticate never fails the request; anything short of a verified credential naming an existing user is anonymous
func (s *BearerStrategy) Authenticate(r *http.Request) (*auth.Principal, error) {
	token := ExtractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, nil
	}

	ctx := r.Context()
	requestID := GetRequestIDFromContext(ctx)

	if !s.verifier.Validate(token) {
		s.logger.Debug("bearer credential rejected", zap.String("request_id", requestID))
		return nil, nil
	}

	uid, err := s.verifier.ParseSubject(token)
	if err != nil {
		s.logger.Debug("bearer credential subject unreadable", zap.String("request_id", requestID), zap.Error(err))
		return nil, nil
	}

	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		s.logger.Warn("principal lookup failed",
			zap.String("request_id", requestID),
			zap.String("uid", uid),
			zap.Error(err))
		return nil, nil
	}

	return auth.NewPrincipal(user.UID, user.Roles), nil
}
