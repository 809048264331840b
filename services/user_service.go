package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/models"
	"github.com/rm/user-service/repositories"
	"github.com/rm/user-service/services/audit"
	"go.uber.org/zap"
)

// TokenIssuer signs credentials for authenticated users
type TokenIssuer interface {
	Issue(subject string, roles []string) (string, error)
}

// SignUpInput carries the fields of a new account
type SignUpInput struct {
	UID         string
	Password    string
	Name        string
	PhoneNumber string
	Email       string
	Roles       []string
}

// UpdateInput carries the mutable profile fields
type UpdateInput struct {
	Password    string
	Name        string
	PhoneNumber string
}

// SignInResult is the outcome of a successful sign-in
type SignInResult struct {
	User  models.UserSummary `json:"user"`
	Token string             `json:"token"`
}

// UserService implements account registration, sign-in and profile maintenance
type UserService struct {
	users    repositories.UserRepository
	txMgr    repositories.TransactionManager
	hasher   auth.PasswordHasher
	issuer   TokenIssuer
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users repositories.UserRepository,
	txMgr repositories.TransactionManager,
	hasher auth.PasswordHasher,
	issuer TokenIssuer,
	recorder audit.Recorder,
	logger *zap.Logger,
) *UserService {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &UserService{
		users:    users,
		txMgr:    txMgr,
		hasher:   hasher,
		issuer:   issuer,
		recorder: recorder,
		logger:   logger,
	}
}

// GetByUID looks up a user by login identifier. It backs the bearer strategy's principal lookup.
func (s *UserService) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, s.mapRepositoryError("get user by uid", err)
	}
	return user, nil
}

// ExistsByUID reports whether uid is already taken
func (s *UserService) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	exists, err := s.users.ExistsByUID(ctx, uid)
	if err != nil {
		return false, WrapInternal("failed to check uid", err)
	}
	return exists, nil
}

// ExistsByEmail reports whether email is already taken
func (s *UserService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, WrapInternal("failed to check email", err)
	}
	return exists, nil
}

// Get returns the user with id
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError("get user", err)
	}
	return user, nil
}

// SignUp registers a new account after checking uid and email are free
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.UID, in.Name, hash, in.PhoneNumber, in.Email, in.Roles)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		taken, err := s.users.ExistsByUID(ctx, in.UID)
		if err != nil {
			return WrapInternal("failed to check uid", err)
		}
		if taken {
			return ErrDuplicateUID
		}

		taken, err = s.users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return WrapInternal("failed to check email", err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		if err := s.users.Create(ctx, user); err != nil {
			return s.mapRepositoryError("create user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("uid", user.UID), zap.String("user_id", user.ID.String()))
	s.recorder.Record(ctx, audit.SignUpEvent(user))
	return user, nil
}

// SignIn verifies the password of uid and issues a credential carrying the user's roles.
// An unknown uid and a wrong password both yield ErrCredentialMismatch and no credential.
func (s *UserService) SignIn(ctx context.Context, uid, password string) (*SignInResult, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("sign-in rejected", zap.String("uid", uid), zap.String("reason", "unknown uid"))
			s.recorder.Record(ctx, audit.SignInFailedEvent(uid, "unknown uid"))
			return nil, ErrCredentialMismatch
		}
		return nil, WrapInternal("failed to load user", err)
	}

	if !s.hasher.Matches(user.PasswordHash, password) {
		s.logger.Info("sign-in rejected", zap.String("uid", uid), zap.String("reason", "credential mismatch"))
		s.recorder.Record(ctx, audit.SignInFailedEvent(uid, "credential mismatch"))
		return nil, ErrCredentialMismatch
	}

	token, err := s.issuer.Issue(user.UID, user.Roles)
	if err != nil {
		return nil, WrapInternal("failed to issue credential", err)
	}

	s.logger.Info("user signed in", zap.String("uid", user.UID))
	s.recorder.Record(ctx, audit.SignInEvent(user))
	return &SignInResult{User: user.Summary(), Token: token}, nil
}

// Update replaces name, password and phone number of the user with id
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, s.mapRepositoryError("get user", err)
		}

		user.Update(in.Name, hash, in.PhoneNumber)

		if err := s.users.Update(ctx, user); err != nil {
			return nil, s.mapRepositoryError("update user", err)
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", id.String()))
	s.recorder.Record(ctx, audit.UserUpdatedEvent(actor(ctx), user, []string{"name", "password", "phoneNumber"}))
	return user, nil
}

// Delete removes the user with id
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return s.mapRepositoryError("delete user", err)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	s.recorder.Record(ctx, audit.UserDeletedEvent(actor(ctx), id))
	return nil
}

func (s *UserService) mapRepositoryError(op string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrUserNotFound.Wrap(err)
	case errors.Is(err, repositories.ErrDuplicateUID):
		return ErrDuplicateUID.Wrap(err)
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return ErrDuplicateEmail.Wrap(err)
	default:
		return WrapInternal("failed to "+op, err)
	}
}

func actor(ctx context.Context) string {
	if p := auth.PrincipalFromContext(ctx); p != nil {
		return p.Subject
	}
	return ""
}
