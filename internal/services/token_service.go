package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 365 * 24 * time.Hour

var (
	ErrMissingSecret         = errors.New("token signing secret is not configured")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenInvalid          = errors.New("invalid token")
)

// Claims is the payload of an identity token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

// TokenService issues and verifies HS256 identity tokens. The zero value has
// no secret and refuses to issue or verify anything, as does a nil
// *TokenService.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. An empty secret is a configuration
// error; a non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Issue returns a signed token for userID expiring after the configured ttl.
func (s *TokenService) Issue(userID string) (string, error) {
	return s.IssueAt(userID, time.Now())
}

// IssueAt is Issue with an explicit issuance time.
func (s *TokenService) IssueAt(userID string, issuedAt time.Time) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(s.ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token and returns the user id it was issued for.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			// A forged token reports its claim errors too, so the signature wins.
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return "", ErrTokenMalformed
			case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
				return "", ErrTokenInvalidSignature
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return "", ErrTokenExpired
			}
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// Ready reports ErrMissingSecret when the service cannot sign tokens.
func (s *TokenService) Ready() error {
	if s == nil || len(s.secret) == 0 {
		return ErrMissingSecret
	}
	return nil
}
