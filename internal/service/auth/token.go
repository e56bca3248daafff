package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL      = 24 * time.Hour
	defaultSigningMethod = "HS256"
)

// ServiceTokenClaims identifies the host-side caller of the gateway API
type ServiceTokenClaims struct {
	jwt.RegisteredClaims
	Service string `json:"svc"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign service tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetime
	// If not set than default is used
	TTL time.Duration
}

// TokenManager mints and validates the bearer tokens host services present
// to the gateway API
type TokenManager struct {
	key string
	alg jwt.SigningMethod
	ttl time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}

	return &TokenManager{
		key: cfg.SecretKey,
		alg: jwt.GetSigningMethod(cfg.Alg),
		ttl: cfg.TTL,
	}, nil
}

// Issue generates a signed token naming the calling service
func (m *TokenManager) Issue(service string) (token string, expiresAt time.Time, err error) {
	now := time.Now().Truncate(time.Second)
	expiresAt = now.Add(m.ttl)

	serviceToken := jwt.NewWithClaims(
		m.alg,
		ServiceTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Service: service,
		},
	)

	token, err = serviceToken.SignedString([]byte(m.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error while signing service token. Err: %w", err)
	}

	return token, expiresAt, nil
}

// Parse validates a token and returns the service it names
func (m *TokenManager) Parse(token string) (service string, err error) {
	claims := &ServiceTokenClaims{}

	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(m.key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil {
		return "", fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	return claims.Service, nil
}
