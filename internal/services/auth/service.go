// Package auth implements the credential and session token lifecycle:
// signup, signin, token verification and optional revocation.
package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	stderrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindsoothe/backend/internal/domain/profile"
	"github.com/mindsoothe/backend/internal/domain/settings"
	"github.com/mindsoothe/backend/internal/domain/user"
	"github.com/mindsoothe/backend/internal/errors"
	"github.com/mindsoothe/backend/internal/storage"
	"github.com/mindsoothe/backend/pkg/logger"
)

// Claims is the JWT claim set carried by session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenRevoker is an optional denylist consulted during verification.
// Entries are keyed by token hash and expire with the token itself.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Config holds token issuing parameters.
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
}

// Service implements the credential and token lifecycle.
type Service struct {
	users   storage.UserStore
	cfg     Config
	revoker TokenRevoker
	log     *logger.Logger
	now     func() time.Time
}

// New constructs an auth service. revoker may be nil, in which case tokens
// are purely stateless and signout is a no-op.
func New(users storage.UserStore, cfg Config, revoker TokenRevoker, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "mindsoothe"
	}
	return &Service{users: users, cfg: cfg, revoker: revoker, log: log, now: time.Now}
}

// Signup registers a new credential. The credential, its profile and its
// default settings are created as one atomic operation.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (user.Public, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.Public{}, "", errors.InvalidInput("email and password are required")
	}
	// bcrypt only reads the first 72 bytes and errors beyond that.
	if len(password) > 72 {
		return user.Public{}, "", errors.InvalidInput("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.Public{}, "", errors.Internal("hash password", err)
	}

	created, err := s.users.CreateUser(ctx,
		user.User{Email: email, PasswordHash: string(hash), FullName: fullName},
		profile.Profile{FullName: fullName},
		settings.Defaults(""),
	)
	if err != nil {
		if stderrors.Is(err, storage.ErrDuplicateEmail) {
			return user.Public{}, "", errors.DuplicateEmail()
		}
		return user.Public{}, "", errors.Internal("create user", err)
	}

	token, err := s.mintToken(created.ID)
	if err != nil {
		return user.Public{}, "", err
	}

	s.log.WithField("user_id", created.ID).Info("user signed up")
	return created.Public(), token, nil
}

// Signin authenticates a credential and mints a fresh token. Any mismatch
// yields the same generic error.
func (s *Service) Signin(ctx context.Context, email, password string) (user.Public, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return user.Public{}, "", errors.InvalidInput("email and password are required")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return user.Public{}, "", errors.InvalidCredentials()
		}
		return user.Public{}, "", errors.Internal("look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.Public{}, "", errors.InvalidCredentials()
	}

	token, err := s.mintToken(u.ID)
	if err != nil {
		return user.Public{}, "", err
	}

	s.log.WithField("user_id", u.ID).Info("user signed in")
	return u.Public(), token, nil
}

// Verify checks a token's signature and expiry, consults the denylist when
// configured, and resolves the embedded user. A token for a deleted user
// fails at the resolve step, not at signature checking.
func (s *Service) Verify(ctx context.Context, token string) (user.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return user.User{}, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, HashToken(token))
		if err != nil {
			return user.User{}, errors.Internal("consult token denylist", err)
		}
		if revoked {
			return user.User{}, errors.InvalidToken(nil)
		}
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return user.User{}, errors.UserNotFound()
		}
		return user.User{}, errors.Internal("resolve user", err)
	}
	return u, nil
}

// Signout revokes the token until its natural expiry. Without a configured
// revoker, tokens stay stateless and this succeeds without effect.
func (s *Service) Signout(ctx context.Context, token string) error {
	if s.revoker == nil {
		return nil
	}

	claims, err := s.parseToken(token)
	if err != nil {
		// Expired or malformed tokens need no denylist entry.
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, HashToken(token), ttl); err != nil {
		return errors.Internal("revoke token", err)
	}
	s.log.WithField("user_id", claims.UserID).Info("token revoked")
	return nil
}

func (s *Service) mintToken(userID string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", errors.Internal("sign token", err)
	}
	return signed, nil
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, stderrors.New("unexpected signing method")
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.InvalidToken(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.InvalidToken(nil)
	}
	return claims, nil
}

// HashToken returns the hex SHA-256 of a token, the denylist key form.
// Raw tokens are never stored server-side.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
