package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/models"
	"github.com/rm/user-service/services"
	"github.com/rm/user-service/services/audit"
	"github.com/rm/user-service/utils"
	"go.uber.org/zap"
)

// Authenticator resolves the caller of a request.
// A nil principal with a nil error means the request is anonymous; a non-nil error aborts the request.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Principal, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	authenticator Authenticator
	docPaths      []string
	recorder      audit.Recorder
	logger        *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
// Requests whose path starts with one of docPaths skip authentication and authorization.
func NewAuthMiddleware(authenticator Authenticator, docPaths []string, recorder audit.Recorder, logger *zap.Logger) *AuthMiddleware {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	paths := make([]string, 0, len(docPaths))
	for _, p := range docPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		docPaths:      paths,
		recorder:      recorder,
		logger:        logger,
	}
}

// IsDocPath reports whether path bypasses the gate
func (m *AuthMiddleware) IsDocPath(path string) bool {
	for _, prefix := range m.docPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Authenticate runs the configured strategy and stores the resulting principal in the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsDocPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		principal, err := m.authenticator.Authenticate(r)
		if err != nil {
			code := services.GetErrorCode(err)
			m.logger.Warn("authentication failed",
				zap.String("request_id", requestID),
				zap.String("code", code.Code),
				zap.Error(err))
			action := models.AuditActionNotAuthenticated
			if errors.Is(err, services.ErrIdentityMissing) {
				action = models.AuditActionIdentityMissing
			}
			m.recorder.Record(ctx, audit.GateEvent(action, "", code.Status))
			_ = utils.WriteFail(w, code)
			return
		}

		if principal != nil {
			ctx = auth.WithPrincipal(ctx, principal)
			m.logger.Debug("authentication successful",
				zap.String("request_id", requestID),
				zap.String("sub", principal.Subject),
				zap.Strings("roles", principal.Roles))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole is a middleware that requires a specific role.
// No principal yields 401 AUTH-001, a principal without role yields 403 AUTH-002.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.IsDocPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			principal := auth.PrincipalFromContext(ctx)
			if principal == nil {
				m.logger.Info("unauthenticated request",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path))
				code := services.GetErrorCode(services.ErrNotAuthenticated)
				m.recorder.Record(ctx, audit.GateEvent(models.AuditActionNotAuthenticated, "", code.Status))
				_ = utils.WriteFail(w, code)
				return
			}

			if !principal.HasRole(role) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("sub", principal.Subject),
					zap.String("required_role", role),
					zap.Strings("roles", principal.Roles))
				code := services.GetErrorCode(services.ErrAccessDenied)
				m.recorder.Record(ctx, audit.GateEvent(models.AuditActionAccessDenied, principal.Subject, code.Status))
				_ = utils.WriteFail(w, code)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header value.
// The scheme is matched case-insensitively and must be followed by a single space; anything else yields "".
func ExtractBearerToken(header string) string {
	const scheme = "bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}
