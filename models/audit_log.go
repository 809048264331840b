package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of security event being audited
type AuditAction string

const (
	AuditActionSignIn           AuditAction = "sign_in"
	AuditActionSignInFailed     AuditAction = "sign_in_failed"
	AuditActionSignUp           AuditAction = "sign_up"
	AuditActionUserUpdated      AuditAction = "user_updated"
	AuditActionUserDeleted      AuditAction = "user_deleted"
	AuditActionNotAuthenticated AuditAction = "not_authenticated"
	AuditActionAccessDenied     AuditAction = "access_denied"
	AuditActionIdentityMissing  AuditAction = "identity_missing"
)

// AuditLog represents a security audit trail entry
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Action       AuditAction     `json:"action" db:"action"`
	Subject      string          `json:"subject,omitempty" db:"subject"` // uid of the caller, empty when anonymous
	UserID       *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details" db:"details"` // JSONB for flexible metadata
	IPAddress    string          `json:"ip_address" db:"ip_address"`
	UserAgent    string          `json:"user_agent" db:"user_agent"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Path         string          `json:"path,omitempty" db:"path"`
	StatusCode   *int            `json:"status_code,omitempty" db:"status_code"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
}

// WithSubject sets the caller identity
func (a *AuditLog) WithSubject(subject string) *AuditLog {
	a.Subject = subject
	return a
}

// WithUser sets the user ID
func (a *AuditLog) WithUser(userID uuid.UUID) *AuditLog {
	a.UserID = &userID
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent, path string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	a.Path = path
	return a
}

// WithStatus sets the HTTP status the request ended with
func (a *AuditLog) WithStatus(statusCode int) *AuditLog {
	a.StatusCode = &statusCode
	return a
}
