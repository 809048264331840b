package tokens

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinKeyLength is the minimum decoded secret size accepted for HS256
const MinKeyLength = 32

var (
	// ErrMalformedCredential is returned when a token cannot be decoded or its signature does not verify
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrExpired is returned when a token verified but its expiry has passed
	ErrExpired = errors.New("credential expired")

	// ErrEmptySubject is returned when issuing a token without a subject
	ErrEmptySubject = errors.New("credential subject is required")
)

// Config holds the key material and validity window of issued credentials
type Config struct {
	Secret        string // base64 (standard encoding) HMAC key
	TokenValidity time.Duration
}

// Claims is the payload carried inside a credential
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Provider issues and verifies signed, time-bounded credentials.
// The key and clock are fixed at construction, so a Provider is safe for concurrent use.
type Provider struct {
	key      []byte
	validity time.Duration
	clock    Clock
	parser   *jwt.Parser
	logger   *zap.Logger
}

// NewProvider decodes the signing secret and builds a Provider
func NewProvider(cfg Config, clock Clock, logger *zap.Logger) (*Provider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("signing secret is required")
	}
	key, err := base64.StdEncoding.DecodeString(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing secret: %w", err)
	}
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing secret too short: got %d bytes, need at least %d", len(key), MinKeyLength)
	}
	if cfg.TokenValidity <= 0 {
		return nil, errors.New("token validity must be positive")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Provider{
		key:      key,
		validity: cfg.TokenValidity,
		clock:    clock,
		logger:   logger,
	}
	p.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clock.Now),
	)

	logger.Info("token provider initialized", zap.Duration("validity", cfg.TokenValidity))
	return p, nil
}

// Validity returns the configured credential lifetime
func (p *Provider) Validity() time.Duration {
	return p.validity
}

// Issue signs a credential for subject carrying roles.
// issuedAt is taken from the injected clock. NumericDate claims carry whole seconds,
// so exp is issuedAt + validity rounded up to the next second.
func (p *Provider) Issue(subject string, roles []string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := p.clock.Now()
	// roles is always encoded as an array, never null
	claimRoles := make([]string, len(roles))
	copy(claimRoles, roles)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Roles: claimRoles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(p.validity))),
		},
	})

	signed, err := token.SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}

	p.logger.Debug("credential issued", zap.String("sub", subject), zap.Int("roles", len(claimRoles)))
	return signed, nil
}

func ceilSecond(t time.Time) time.Time {
	if truncated := t.Truncate(time.Second); !truncated.Equal(t) {
		return truncated.Add(time.Second)
	}
	return t
}

// Parse decodes and fully verifies a credential.
// It returns ErrExpired for verified but expired tokens and ErrMalformedCredential for everything else.
func (p *Provider) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return p.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if !token.Valid {
		return nil, ErrMalformedCredential
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrMalformedCredential)
	}
	if claims.Roles == nil {
		return nil, fmt.Errorf("%w: missing roles", ErrMalformedCredential)
	}
	return claims, nil
}

// ParseSubject returns the subject of a verified credential.
// Callers are expected to have checked Validate first; any decode or signature failure is ErrMalformedCredential.
func (p *Provider) ParseSubject(tokenString string) (string, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrExpired) {
			return "", fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
		return "", err
	}
	return claims.Subject, nil
}

// Validate reports whether tokenString is a well formed, correctly signed, unexpired credential.
// Every failure cause collapses to false.
func (p *Provider) Validate(tokenString string) bool {
	if _, err := p.Parse(tokenString); err != nil {
		p.logger.Debug("credential rejected", zap.Error(err))
		return false
	}
	return true
}
