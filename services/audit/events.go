package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rm/user-service/models"
)

const resourceUser = "user"

type requestMetaKey struct{}

// RequestMeta describes the inbound request an audit event belongs to
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
	Path      string
}

// WithRequestMeta stores meta in ctx
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext retrieves the request metadata stored by WithRequestMeta
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

// SignInEvent records a successful sign-in
func SignInEvent(user *models.User) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionSignIn, resourceUser).
		WithSubject(user.UID).
		WithUser(user.ID).
		WithResource(user.ID)
}

// SignInFailedEvent records a rejected sign-in attempt; the password is never included
func SignInFailedEvent(uid, reason string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionSignInFailed, resourceUser).
		WithSubject(uid).
		WithDetails(map[string]string{"reason": reason})
}

// SignUpEvent records a new account
func SignUpEvent(user *models.User) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionSignUp, resourceUser).
		WithSubject(user.UID).
		WithUser(user.ID).
		WithResource(user.ID).
		WithDetails(map[string]interface{}{"roles": user.Roles})
}

// UserUpdatedEvent records a profile change made by actor
func UserUpdatedEvent(actor string, user *models.User, fields []string) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionUserUpdated, resourceUser).
		WithSubject(actor).
		WithResource(user.ID).
		WithDetails(map[string]interface{}{"fields": fields})
}

// UserDeletedEvent records the removal of a user
func UserDeletedEvent(actor string, id uuid.UUID) *models.AuditLog {
	return models.NewAuditLog(models.AuditActionUserDeleted, resourceUser).
		WithSubject(actor).
		WithResource(id)
}

// GateEvent records a request rejected by the authorization gate
func GateEvent(action models.AuditAction, subject string, status int) *models.AuditLog {
	return models.NewAuditLog(action, "request").
		WithSubject(subject).
		WithStatus(status)
}
