package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// User tests
func TestNewUser(t *testing.T) {
	roles := []string{"USER"}
	user := NewUser("alice", "Alice", "hash", "010-1234-5678", "alice@example.com", roles)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.UID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, "010-1234-5678", user.PhoneNumber)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, []string{"USER"}, user.Roles)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)

	roles[0] = "ADMIN"
	assert.Equal(t, []string{"USER"}, user.Roles)
}

func TestUser_Update(t *testing.T) {
	user := NewUser("alice", "Alice", "old-hash", "010-1234-5678", "alice@example.com", []string{"USER"})
	user.UpdatedAt = time.Now().Add(-time.Hour)
	before := user.UpdatedAt

	user.Update("Alice Kim", "new-hash", "011-9876-5432")

	assert.Equal(t, "Alice Kim", user.Name)
	assert.Equal(t, "new-hash", user.PasswordHash)
	assert.Equal(t, "011-9876-5432", user.PhoneNumber)
	assert.Equal(t, "alice", user.UID, "uid is immutable")
	assert.Equal(t, "alice@example.com", user.Email, "email is immutable")
	assert.True(t, user.UpdatedAt.After(before))
}

func TestUser_JSONOmitsPasswordHash(t *testing.T) {
	user := NewUser("alice", "Alice", "secret-hash", "010-1234-5678", "alice@example.com", nil)

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-hash")
	assert.Contains(t, string(data), `"phoneNumber":"010-1234-5678"`)
}

func TestUser_Summary(t *testing.T) {
	user := NewUser("alice", "Alice", "hash", "", "alice@example.com", nil)

	summary := user.Summary()

	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, "alice", summary.UID)
	assert.Equal(t, "Alice", summary.Name)
}

func TestUser_TableName(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
}

// AuditLog tests
func TestNewAuditLog(t *testing.T) {
	log := NewAuditLog(AuditActionSignIn, "user")

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, AuditActionSignIn, log.Action)
	assert.Equal(t, "user", log.ResourceType)
	assert.False(t, log.Timestamp.IsZero())
	assert.Nil(t, log.UserID)
	assert.Nil(t, log.StatusCode)
}

func TestAuditLog_BuilderMethods(t *testing.T) {
	userID := uuid.New()
	resourceID := uuid.New()

	log := NewAuditLog(AuditActionAccessDenied, "route").
		WithSubject("alice").
		WithUser(userID).
		WithResource(resourceID).
		WithRequest("req-123", "192.168.1.1", "Mozilla/5.0", "/id/1").
		WithStatus(403).
		WithDetails(map[string]interface{}{"required_role": "USER"})

	assert.Equal(t, "alice", log.Subject)
	assert.Equal(t, userID, *log.UserID)
	assert.Equal(t, resourceID, *log.ResourceID)
	assert.Equal(t, "req-123", log.RequestID)
	assert.Equal(t, "192.168.1.1", log.IPAddress)
	assert.Equal(t, "Mozilla/5.0", log.UserAgent)
	assert.Equal(t, "/id/1", log.Path)
	assert.Equal(t, 403, *log.StatusCode)
	assert.JSONEq(t, `{"required_role":"USER"}`, string(log.Details))
}

func TestAuditLog_TableName(t *testing.T) {
	assert.Equal(t, "audit_logs", AuditLog{}.TableName())
}
