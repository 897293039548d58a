package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned for a malformed, expired or revoked token
var ErrInvalidSession = errors.New("invalid session")

// SessionService issues signed session tokens and tracks which of them are
// still live. A token carries the user ID and a session ID; the store maps
// the session ID back to the user so logout can revoke it.
type SessionService struct {
	store     SessionStore
	jwtSecret string
	ttl       time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(store SessionStore, jwtSecret string, ttl time.Duration) *SessionService {
	return &SessionService{
		store:     store,
		jwtSecret: jwtSecret,
		ttl:       ttl,
	}
}

// TTL returns how long a new session stays valid
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID and returns its token
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	sessionID := uuid.New().String()
	if err := s.store.Save(ctx, sessionID, userID, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.generateJWT(userID, sessionID)
	if err != nil {
		_ = s.store.Delete(ctx, sessionID)
		return "", err
	}
	return token, nil
}

// Resolve returns the user ID of a live session
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	userID, sessionID, err := s.validateJWT(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	stored, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if stored != userID {
		return "", ErrInvalidSession
	}
	return userID, nil
}

// Destroy revokes the session behind token. Invalid tokens are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	_, sessionID, err := s.validateJWT(token)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionService) generateJWT(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sessionID,
		"exp":     now.Add(s.ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *SessionService) validateJWT(tokenString string) (userID, sessionID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}

	userID, ok = claims["user_id"].(string)
	if !ok {
		return "", "", fmt.Errorf("user_id not found in token")
	}
	sessionID, ok = claims["sid"].(string)
	if !ok {
		return "", "", fmt.Errorf("sid not found in token")
	}

	return userID, sessionID, nil
}
