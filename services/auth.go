package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/notice"
)

const (
	defaultJWTSecret = "your-default-secret-key-change-in-production"
	localJWTLifetime = 7 * 24 * time.Hour
)

// ErrNoToken is returned when the backend accepted a login without handing
// out a token.
var ErrNoToken = errors.New("no token in login response")

// AuthBackend is the part of the remote API that deals with sessions.
type AuthBackend interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, reg api.Registration) (string, error)
	Logout(ctx context.Context) error
}

// SessionStorage stores the remote access token.
type SessionStorage interface {
	api.TokenSource
	SaveToken(token string, expiresAt time.Time) error
}

// Claims are what a local dashboard token carries.
type Claims struct {
	Email string
	Role  string
}

type AuthService struct {
	remote    AuthBackend
	sessions  SessionStorage
	identity  *IdentityStore
	notifier  notice.Notifier
	jwtSecret []byte
	expiry    func(token string) time.Time
	log       *zap.Logger
}

// NewAuthService builds the auth service. tokenLifetime is used for remote
// tokens that carry no readable expiry.
func NewAuthService(remote AuthBackend, sessions SessionStorage, identity *IdentityStore, notifier notice.Notifier, jwtSecret string, tokenLifetime time.Duration, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.L()
	}
	if notifier == nil {
		notifier = notice.Discard
	}
	if jwtSecret == "" {
		log.Warn("JWT_SECRET is not set, using the default secret")
		jwtSecret = defaultJWTSecret
	}

	return &AuthService{
		remote:    remote,
		sessions:  sessions,
		identity:  identity,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		expiry:    TokenExpiry(tokenLifetime),
		log:       log,
	}
}

// TokenExpiry returns a function that reads the exp claim of a remote token
// without verifying it, and falls back to now + fallback.
func TokenExpiry(fallback time.Duration) func(token string) time.Time {
	return func(token string) time.Time {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				return exp.Time
			}
		}
		return time.Now().Add(fallback)
	}
}

// Login signs in against the backend, stores the token and loads the
// profile.
func (s *AuthService) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	token, err := s.remote.Login(ctx, creds)
	if err != nil {
		if api.StatusCode(err) == http.StatusUnauthorized {
			s.notifier.Notify(notice.New(notice.LevelError, notice.MsgInvalidCredentials, nil))
		} else {
			s.notifier.Notify(notice.New(notice.LevelError, notice.MsgUnexpectedError, nil))
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if token == "" {
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgLoginNoToken, nil))
		return nil, ErrNoToken
	}

	if err := s.sessions.SaveToken(token, s.expiry(token)); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgLoginSucceeded, nil))

	user, err := s.identity.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// Register creates an account. A token handed back is stored like a login.
func (s *AuthService) Register(ctx context.Context, reg api.Registration) error {
	token, err := s.remote.Register(ctx, reg)
	if err != nil {
		msg := api.MessageOf(err)
		if msg == "" {
			msg = notice.Translate(notice.MsgUnexpectedError, nil)
		}
		s.notifier.Notify(notice.Notice{Level: notice.LevelError, Message: msg})
		return fmt.Errorf("failed to register: %w", err)
	}

	if token != "" {
		if err := s.sessions.SaveToken(token, s.expiry(token)); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		s.identity.Invalidate()
	}
	s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgRegistered, nil))
	return nil
}

// Logout ends the remote session. The local session is dropped whether or
// not the backend answered.
func (s *AuthService) Logout(ctx context.Context) error {
	remoteErr := s.remote.Logout(ctx)
	if remoteErr != nil {
		s.log.Warn("remote logout failed", zap.Error(remoteErr))
		s.notifier.Notify(notice.New(notice.LevelError, notice.MsgUnexpectedError, nil))
	} else {
		s.notifier.Notify(notice.New(notice.LevelSuccess, notice.MsgLoggedOut, nil))
	}

	s.identity.Invalidate()
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if remoteErr != nil {
		return fmt.Errorf("failed to log out: %w", remoteErr)
	}
	return nil
}

// CreateJWT generates a local dashboard token for a user
func (s *AuthService) CreateJWT(email, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(localJWTLifetime).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyJWT verifies a local dashboard token and returns its claims
func (s *AuthService) VerifyJWT(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, errors.New("email claim missing")
	}
	role, _ := claims["role"].(string)

	return &Claims{Email: email, Role: role}, nil
}
