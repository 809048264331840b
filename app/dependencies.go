package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rm/user-service/config"
	"github.com/rm/user-service/internal/auth"
	"github.com/rm/user-service/middleware"
	"github.com/rm/user-service/repositories"
	"github.com/rm/user-service/repositories/postgres"
	"github.com/rm/user-service/services"
	"github.com/rm/user-service/services/audit"
	"github.com/rm/user-service/tokens"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HealthPaths are served without authentication in every mode
var HealthPaths = []string{"/healthz", "/readyz"}

const defaultAuditStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	AuditLogs repositories.AuditRepository
	TxManager repositories.TransactionManager

	// Security audit; AuditService is nil when auditing is disabled
	AuditService *audit.AuditService
	Recorder     audit.Recorder

	// Auth
	Tokens         *tokens.Provider
	Hasher         auth.PasswordHasher
	Authenticator  middleware.Authenticator
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	UserService *services.UserService
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an already opened repository factory
func NewDependenciesWithFactory(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	deps.initRepositories()

	if err := deps.initAudit(cfg.Audit); err != nil {
		return nil, fmt.Errorf("failed to initialize audit: %w", err)
	}

	if err := deps.initAuth(cfg); err != nil {
		// workers are already running
		deps.stopAudit(defaultAuditStopTimeout)
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.Bool("audit_enabled", deps.AuditService != nil))
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAudit(cfg config.AuditConfig) error {
	if !cfg.Enabled {
		d.Recorder = audit.NopRecorder{}
		d.Logger.Info("security audit disabled")
		return nil
	}

	svc := audit.NewAuditService(d.AuditLogs, d.Logger.Named("audit"), audit.Config{
		BufferSize:  cfg.BufferSize,
		WorkerCount: cfg.WorkerCount,
	})
	if err := svc.Start(); err != nil {
		return err
	}

	d.AuditService = svc
	d.Recorder = svc
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	provider, err := tokens.NewProvider(tokens.Config{
		Secret:        cfg.JWT.Secret,
		TokenValidity: cfg.JWT.TokenValidity,
	}, tokens.SystemClock{}, d.Logger.Named("tokens"))
	if err != nil {
		return err
	}
	d.Tokens = provider
	d.Hasher = auth.NewBcryptHasher(bcrypt.DefaultCost)

	d.UserService = services.NewUserService(d.Users, d.TxManager, d.Hasher, d.Tokens, d.Recorder, d.Logger.Named("users"))

	switch cfg.Auth.Mode {
	case config.AuthModeBearer:
		d.Authenticator = middleware.NewBearerStrategy(d.Tokens, d.UserService, d.Logger)
	case config.AuthModeHeader:
		d.Authenticator = middleware.NewHeaderStrategy(d.Logger)
	default:
		return fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	bypass := make([]string, 0, len(cfg.Auth.DocPaths)+len(HealthPaths))
	bypass = append(bypass, cfg.Auth.DocPaths...)
	bypass = append(bypass, HealthPaths...)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Authenticator, bypass, d.Recorder, d.Logger)

	d.Logger.Info("auth initialized",
		zap.String("mode", cfg.Auth.Mode),
		zap.String("required_role", cfg.Auth.RequiredRole),
		zap.Duration("token_validity", cfg.JWT.TokenValidity))
	return nil
}

func (d *Dependencies) stopAudit(timeout time.Duration) error {
	if d.AuditService == nil {
		return nil
	}
	err := d.AuditService.Stop(timeout)
	d.AuditService = nil
	d.Recorder = audit.NopRecorder{}
	return err
}

// Close gracefully shuts down all dependencies.
// Pending audit events are flushed before the database pool closes.
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	timeout := defaultAuditStopTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := d.stopAudit(timeout); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}
