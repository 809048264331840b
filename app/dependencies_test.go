package app

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rm/user-service/config"
	"github.com/rm/user-service/middleware"
	"github.com/rm/user-service/repositories/postgres"
	"github.com/rm/user-service/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewDependenciesWithFactory(t *testing.T) {
	t.Run("bearer mode with audit", func(t *testing.T) {
		cfg := testConfig(t)
		factory, mock := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps)

		// Verify infrastructure
		assert.Same(t, cfg, deps.Config)
		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Logger)

		// Verify repositories
		assert.NotNil(t, deps.Users)
		assert.NotNil(t, deps.AuditLogs)
		assert.NotNil(t, deps.TxManager)

		// Verify auth and services
		assert.NotNil(t, deps.Tokens)
		assert.NotNil(t, deps.Hasher)
		assert.NotNil(t, deps.UserService)
		assert.NotNil(t, deps.AuthMiddleware)
		assert.IsType(t, &middleware.BearerStrategy{}, deps.Authenticator)

		require.NotNil(t, deps.AuditService)
		assert.True(t, deps.AuditService.GetStats().Started)
		assert.Same(t, deps.AuditService, deps.Recorder)

		mock.ExpectClose()
		require.NoError(t, deps.Close(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("header mode without audit", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.Mode = config.AuthModeHeader
		cfg.Audit.Enabled = false
		factory, mock := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zap.NewNop())
		require.NoError(t, err)

		assert.IsType(t, &middleware.HeaderStrategy{}, deps.Authenticator)
		assert.Nil(t, deps.AuditService)
		assert.Equal(t, audit.NopRecorder{}, deps.Recorder)

		mock.ExpectClose()
		require.NoError(t, deps.Close(context.Background()))
	})

	t.Run("health and doc paths bypass the gate", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Audit.Enabled = false
		factory, mock := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zap.NewNop())
		require.NoError(t, err)

		for _, path := range []string{"/healthz", "/readyz", "/v2/api-docs", "/swagger/index.html"} {
			assert.True(t, deps.AuthMiddleware.IsDocPath(path), path)
		}
		assert.False(t, deps.AuthMiddleware.IsDocPath("/id/123"))

		mock.ExpectClose()
		require.NoError(t, deps.Close(context.Background()))
	})

	t.Run("invalid signing secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.JWT.Secret = "not base64!"
		factory, _ := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize auth")
	})

	t.Run("unknown auth mode", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.Mode = "saml"
		factory, _ := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "unsupported auth mode")
	})
}

func TestNewDependencies(t *testing.T) {
	t.Run("database connection failure", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Database.Host = "invalid-host-that-does-not-exist"
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(ctx, cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestDependenciesClose(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		cfg := testConfig(t)
		factory, mock := newMockFactory(t)

		deps, err := NewDependenciesWithFactory(cfg, factory, zap.NewNop())
		require.NoError(t, err)
		service := deps.AuditService

		mock.ExpectClose()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, deps.Close(ctx))

		assert.False(t, service.GetStats().Started)
		assert.Nil(t, deps.AuditService)

		// Second close is a no-op
		assert.NoError(t, deps.Close(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Test helpers

func newMockFactory(t *testing.T) (*postgres.RepositoryFactory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := zap.NewNop()
	return postgres.NewRepositoryFactoryFromDB(postgres.Wrap(db, logger), logger), mock
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins:  []string{"http://localhost:*"},
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "users_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
		},
		JWT: config.JWTConfig{
			Secret:        base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
			TokenValidity: time.Hour,
		},
		Auth: config.AuthConfig{
			Mode:         config.AuthModeBearer,
			DocPaths:     []string{"/v2/api-docs", "/swagger"},
			RequiredRole: "USER",
		},
		Audit: config.AuditConfig{
			Enabled:     true,
			BufferSize:  16,
			WorkerCount: 1,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:  "debug",
			LogFormat: "json",
		},
	}
}
