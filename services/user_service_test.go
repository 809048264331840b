package services

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/models"
	"github.com/rm/user-service/repositories"
	"github.com/rm/user-service/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	args := m.Called(ctx, uid)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// plainHasher keeps tests fast; bcrypt itself is covered in internal/auth
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	return "hashed:" + password, nil
}

func (plainHasher) Matches(hash, password string) bool {
	return hash == "hashed:"+password
}

type captureRecorder struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (r *captureRecorder) Record(_ context.Context, log *models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
}

func (r *captureRecorder) actions() []models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditAction, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.Action)
	}
	return out
}

var serviceTestTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type userServiceFixture struct {
	service  *UserService
	repo     *MockUserRepository
	txMgr    *MockTransactionManager
	tx       *MockTransaction
	provider *tokens.Provider
	recorder *captureRecorder
}

func newUserServiceFixture(t *testing.T) *userServiceFixture {
	t.Helper()
	provider, err := tokens.NewProvider(tokens.Config{
		Secret:        base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		TokenValidity: time.Hour,
	}, tokens.ClockFunc(func() time.Time { return serviceTestTime }), zap.NewNop())
	require.NoError(t, err)

	f := &userServiceFixture{
		repo:     new(MockUserRepository),
		txMgr:    new(MockTransactionManager),
		tx:       new(MockTransaction),
		provider: provider,
		recorder: &captureRecorder{},
	}
	f.service = NewUserService(f.repo, f.txMgr, plainHasher{}, provider, f.recorder, zap.NewNop())
	return f
}

func (f *userServiceFixture) expectTransaction(ctx context.Context, commit bool) {
	f.txMgr.On("Begin", ctx).Return(f.tx, nil)
	f.tx.On("Context").Return(ctx)
	if commit {
		f.tx.On("Commit").Return(nil)
	} else {
		f.tx.On("Rollback").Return(nil)
	}
}

func validSignUp() SignUpInput {
	return SignUpInput{
		UID:         "alice",
		Password:    "Str0ng!pass",
		Name:        "Alice",
		PhoneNumber: "010-1234-5678",
		Email:       "alice@example.com",
		Roles:       []string{auth.RoleUser},
	}
}

func TestUserService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.expectTransaction(ctx, true)
		f.repo.On("ExistsByUID", ctx, "alice").Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		f.repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)

		user, err := f.service.SignUp(ctx, validSignUp())
		require.NoError(t, err)
		assert.Equal(t, "alice", user.UID)
		assert.Equal(t, "hashed:Str0ng!pass", user.PasswordHash)
		assert.Equal(t, []string{auth.RoleUser}, user.Roles)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.True(t, f.tx.committed)
		assert.Equal(t, []models.AuditAction{models.AuditActionSignUp}, f.recorder.actions())
		f.repo.AssertExpectations(t)
	})

	t.Run("duplicate uid", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.expectTransaction(ctx, false)
		f.repo.On("ExistsByUID", ctx, "alice").Return(true, nil)

		_, err := f.service.SignUp(ctx, validSignUp())
		assert.ErrorIs(t, err, ErrDuplicateUID)
		assert.True(t, f.tx.rolledback)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.recorder.actions())
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.expectTransaction(ctx, false)
		f.repo.On("ExistsByUID", ctx, "alice").Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, "alice@example.com").Return(true, nil)

		_, err := f.service.SignUp(ctx, validSignUp())
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Equal(t, "E104", GetErrorCode(err).Code)
	})

	t.Run("insert race on email maps to duplicate email", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.expectTransaction(ctx, false)
		f.repo.On("ExistsByUID", ctx, "alice").Return(false, nil)
		f.repo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		f.repo.On("Create", ctx, mock.Anything).Return(repositories.ErrDuplicateEmail)

		_, err := f.service.SignUp(ctx, validSignUp())
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.expectTransaction(ctx, false)
		f.repo.On("ExistsByUID", ctx, "alice").Return(false, errors.New("connection reset"))

		_, err := f.service.SignUp(ctx, validSignUp())
		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, "E500", GetErrorCode(err).Code)
	})
}

func TestUserService_SignIn(t *testing.T) {
	ctx := context.Background()
	stored := models.NewUser("alice", "Alice", "hashed:Str0ng!pass", "010-1234-5678", "alice@example.com", []string{auth.RoleUser, auth.RoleAdmin})

	t.Run("issues credential for matching password", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.repo.On("GetByUID", ctx, "alice").Return(stored, nil)

		result, err := f.service.SignIn(ctx, "alice", "Str0ng!pass")
		require.NoError(t, err)
		assert.Equal(t, stored.Summary(), result.User)

		claims, err := f.provider.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, []string{auth.RoleUser, auth.RoleAdmin}, claims.Roles)
		assert.Equal(t, []models.AuditAction{models.AuditActionSignIn}, f.recorder.actions())
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.repo.On("GetByUID", ctx, "alice").Return(stored, nil)

		result, err := f.service.SignIn(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrCredentialMismatch)
		assert.Nil(t, result)
		assert.Equal(t, []models.AuditAction{models.AuditActionSignInFailed}, f.recorder.actions())
	})

	t.Run("unknown uid", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.repo.On("GetByUID", ctx, "mallory").Return(nil, repositories.ErrNotFound)

		result, err := f.service.SignIn(ctx, "mallory", "whatever")
		assert.ErrorIs(t, err, ErrCredentialMismatch)
		assert.Nil(t, result)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newUserServiceFixture(t)
		f.repo.On("GetByUID", ctx, "alice").Return(nil, errors.New("timeout"))

		_, err := f.service.SignIn(ctx, "alice", "Str0ng!pass")
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture(t)
	user := models.NewUser("alice", "Alice", "h", "010-1234-5678", "alice@example.com", nil)
	missing := uuid.New()

	f.repo.On("GetByID", ctx, user.ID).Return(user, nil)
	f.repo.On("GetByID", ctx, missing).Return(nil, repositories.ErrNotFound)

	got, err := f.service.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = f.service.Get(ctx, missing)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserService_Exists(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture(t)
	f.repo.On("ExistsByUID", ctx, "alice").Return(true, nil)
	f.repo.On("ExistsByEmail", ctx, "nobody@example.com").Return(false, nil)
	f.repo.On("ExistsByEmail", ctx, "broken@example.com").Return(false, errors.New("boom"))

	taken, err := f.service.ExistsByUID(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = f.service.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = f.service.ExistsByEmail(ctx, "broken@example.com")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestUserService_Update(t *testing.T) {
	ctx := auth.WithPrincipal(context.Background(), auth.NewPrincipal("admin", []string{auth.RoleUser}))

	t.Run("assigns each field independently", func(t *testing.T) {
		f := newUserServiceFixture(t)
		user := models.NewUser("alice", "Alice", "hashed:old", "010-1111-2222", "alice@example.com", nil)
		f.expectTransaction(ctx, true)
		f.repo.On("GetByID", ctx, user.ID).Return(user, nil)
		f.repo.On("Update", ctx, user).Return(nil)

		updated, err := f.service.Update(ctx, user.ID, UpdateInput{
			Password:    "N3w!password",
			Name:        "Alice Kim",
			PhoneNumber: "011-999-8888",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Kim", updated.Name)
		assert.Equal(t, "011-999-8888", updated.PhoneNumber)
		assert.Equal(t, "hashed:N3w!password", updated.PasswordHash)
		assert.Equal(t, "alice@example.com", updated.Email)

		require.Len(t, f.recorder.logs, 1)
		assert.Equal(t, "admin", f.recorder.logs[0].Subject)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newUserServiceFixture(t)
		id := uuid.New()
		f.expectTransaction(ctx, false)
		f.repo.On("GetByID", ctx, id).Return(nil, repositories.ErrNotFound)

		_, err := f.service.Update(ctx, id, UpdateInput{Password: "N3w!password", Name: "x", PhoneNumber: "010-1234-5678"})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Equal(t, 404, GetErrorCode(err).Status)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture(t)
	id := uuid.New()
	missing := uuid.New()

	f.repo.On("Delete", ctx, id).Return(nil)
	f.repo.On("Delete", ctx, missing).Return(repositories.ErrNotFound)

	require.NoError(t, f.service.Delete(ctx, id))
	assert.Equal(t, []models.AuditAction{models.AuditActionUserDeleted}, f.recorder.actions())

	err := f.service.Delete(ctx, missing)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_GetByUID(t *testing.T) {
	ctx := context.Background()
	f := newUserServiceFixture(t)
	f.repo.On("GetByUID", ctx, "ghost").Return(nil, repositories.ErrNotFound)

	_, err := f.service.GetByUID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewUserService_NilRecorder(t *testing.T) {
	s := NewUserService(new(MockUserRepository), new(MockTransactionManager), plainHasher{}, nil, nil, zap.NewNop())
	assert.NotNil(t, s.recorder)
}
