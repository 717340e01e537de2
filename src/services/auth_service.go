package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/repositories"
	"welfare-committee-backend/src/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// compared when the username is unknown so both failures cost one bcrypt run
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("welfare-committee"), bcrypt.DefaultCost)

type AuthConfig struct {
	Secret string
	TTL    time.Duration
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	Username  string `json:"username"`
}

type AuthService struct {
	admins    repositories.AdminStore
	blacklist *utils.TokenBlacklist
	cfg       AuthConfig
	log       *zap.Logger
}

func NewAuthService(admins repositories.AdminStore, blacklist *utils.TokenBlacklist, cfg AuthConfig, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{admins: admins, blacklist: blacklist, cfg: cfg, log: log.Named("auth")}
}

// HashPassword returns the bcrypt hash stored for an admin.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, _, err := utils.GenerateJWT(s.cfg.Secret, admin.Username, s.cfg.TTL)
	if err != nil {
		return nil, err
	}
	s.log.Info("Admin logged in", zap.String("username", admin.Username))
	return &LoginResult{Token: token, ExpiresIn: int64(s.cfg.TTL.Seconds()), Username: admin.Username}, nil
}

// Authenticate checks the token signature, expiry and revocation.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ParseJWT(s.cfg.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway. Without a
// blacklist the token simply runs out.
func (s *AuthService) Logout(ctx context.Context, claims *utils.JWTClaims) error {
	if !s.blacklist.Enabled() {
		s.log.Debug("Token revocation disabled, logout is client-side only")
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL())
}

// SeedAdmin creates or refreshes the configured admin. A pre-computed
// bcrypt hash wins over a plain password. Nothing happens without a
// username.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password, passwordHash string) error {
	if strings.TrimSpace(username) == "" {
		return nil
	}

	hash := strings.TrimSpace(passwordHash)
	switch {
	case hash != "":
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	case password != "":
		var err error
		if hash, err = HashPassword(password); err != nil {
			return err
		}
	default:
		return fmt.Errorf("admin %q has neither ADMIN_PASSWORD nor ADMIN_PASSWORD_HASH", username)
	}

	if err := s.admins.Upsert(ctx, &models.Admin{Username: username, PasswordHash: hash}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info("Admin account ready", zap.String("username", strings.ToLower(strings.TrimSpace(username))))
	return nil
}
