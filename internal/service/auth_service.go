package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"weather_station/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = time.Hour
	tokenIssuer       = "weather_station"
	minPasswordLength = 8
)

// Operator names are stored lowercase.
var operatorNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{2,31}$`)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOperatorExists     = errors.New("operator already exists")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService registers station operators and issues the bearer tokens
// that guard the local API.
type AuthService struct {
	operators  repository.Authorization
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(repo repository.Authorization, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{operators: repo, signingKey: []byte(cfg.SigningKey), tokenTTL: ttl, now: time.Now}
}

// OperatorClaims identify the operator behind a directive or log query.
type OperatorClaims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// SignUp registers an operator. Names are case-insensitive, 3 to 32
// characters of [a-z0-9_.-]; passwords need at least 8 characters.
func (s *AuthService) SignUp(username, password string) (int, error) {
	name, err := normalizeOperatorName(username)
	if err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(password)) < minPasswordLength {
		return 0, fmt.Errorf("%w: password needs at least %d characters", ErrInvalidCredentials, minPasswordLength)
	}

	existing, err := s.operators.GetByUsername(name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: %q", ErrOperatorExists, name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.operators.Create(name, string(hash))
}

// GenerateToken checks the operator's password and signs a token naming them.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	name, err := normalizeOperatorName(username)
	if err != nil {
		return "", ErrOperatorNotFound
	}
	op, err := s.operators.GetByUsername(name)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrOperatorNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(op.ID, op.Username)
}

// ParseToken accepts only HS256 tokens from this station that carry an expiry.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims OperatorClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims,
		func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.OperatorID <= 0 {
		return 0, fmt.Errorf("%w: no operator", ErrInvalidToken)
	}
	return claims.OperatorID, nil
}

func (s *AuthService) issueToken(operatorID int, username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: operatorID,
	})
	return token.SignedString(s.signingKey)
}

func normalizeOperatorName(username string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(username))
	if !operatorNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: operator name %q must be 3-32 characters of a-z, 0-9, '_', '.', '-'", ErrInvalidCredentials, username)
	}
	return name, nil
}
