package middleware

import (
	"net/http"
	"strings"

	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/services"
	"go.uber.org/zap"
)

// Headers set by the trusted gateway in front of the service
const (
	HeaderUserUID   = "X-User-Uid"
	HeaderUserRoles = "X-User-Roles"
)

// HeaderStrategy trusts identity headers injected by an upstream gateway. No signature is checked.
type HeaderStrategy struct {
	logger *zap.Logger
}

// NewHeaderStrategy creates a new HeaderStrategy
func NewHeaderStrategy(logger *zap.Logger) *HeaderStrategy {
	return &HeaderStrategy{logger: logger}
}

// Authenticate builds the principal from the identity headers.
// A missing or blank uid is fatal to the request; missing roles mean no authorities.
func (s *HeaderStrategy) Authenticate(r *http.Request) (*auth.Principal, error) {
	uid := strings.TrimSpace(r.Header.Get(HeaderUserUID))
	if uid == "" {
		s.logger.Warn("identity header missing",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("header", HeaderUserUID))
		return nil, services.ErrIdentityMissing
	}

	return auth.NewPrincipal(uid, auth.ParseRoles(r.Header.Get(HeaderUserRoles))), nil
}
