package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/wanderlist/internal/models"
)

// tokenIssuer is stamped on every token and required when validating.
const tokenIssuer = "wanderlist"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// Claims identifies the logged-in user. UserID is duplicated as the subject.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager signs and checks HS256 login tokens.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// NewJWTManager returns a manager issuing tokens valid for ttl.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		key: []byte(secret),
		ttl: ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// Generate issues a token for user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	issued := time.Now()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
		},
	}).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, issuer and expiry and returns the token's claims.
// Every failure wraps ErrInvalidToken.
func (m *JWTManager) Validate(token string) (*Claims, error) {
	var claims Claims
	if _, err := m.parser.ParseWithClaims(token, &claims, m.keyFunc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, fmt.Errorf("%w: subject does not match user", ErrInvalidToken)
	}
	return &claims, nil
}

func (m *JWTManager) keyFunc(*jwt.Token) (any, error) {
	return m.key, nil
}
