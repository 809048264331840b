package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rm/user-service/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUID is returned when a user insert collides on uid
	ErrDuplicateUID = errors.New("duplicate uid")

	// ErrDuplicateEmail is returned when a user insert collides on email
	ErrDuplicateEmail = errors.New("duplicate email")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context that routes repository calls through the transaction
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUID retrieves a user by login identifier
	GetByUID(ctx context.Context, uid string) (*models.User, error)

	// ExistsByUID reports whether a user holds uid
	ExistsByUID(ctx context.Context, uid string) (bool, error)

	// ExistsByEmail reports whether a user holds email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users     UserRepository
	AuditLogs AuditRepository
}
