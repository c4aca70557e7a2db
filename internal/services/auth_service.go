package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/config"
	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

// TokenPair is one minted access token plus the raw refresh token that goes
// into the cookie. Only the refresh token's hash is ever persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Signup registers a user (role defaults to csr) and logs them in.
func (s *AuthService) Signup(req *dto.SignupRequest) (*models.User, *TokenPair, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, Validation("email and password are required")
	}
	if len(req.Password) < 8 {
		return nil, nil, Validation("password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = string(policy.RoleCSR)
	}
	parsed := policy.ParseRole(role)
	if parsed == policy.RoleUnknown {
		return nil, nil, Validation("invalid role")
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         string(parsed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issueTokenPair(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Authenticate verifies credentials and mints a token pair.
func (s *AuthService) Authenticate(email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Rotate exchanges a raw refresh token for a fresh pair. The old record is
// revoked and chained to its replacement inside one transaction; the
// revocation update is guarded on revoked_at IS NULL so that of two
// concurrent rotations of the same token exactly one succeeds.
func (s *AuthService) Rotate(rawToken string) (*models.User, *TokenPair, error) {
	if rawToken == "" {
		return nil, nil, ErrInvalidToken
	}
	tokenHash := hashToken(rawToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", tokenHash).First(&stored).Error; err != nil {
		return nil, nil, ErrInvalidToken
	}

	now := time.Now()
	if stored.RevokedAt != nil || now.After(stored.ExpiresAt) {
		// Replay guard: an expired-but-unrevoked token is revoked on sight.
		// This write must commit even though the rotation fails, so it runs
		// on the base handle, not inside the rotation transaction.
		if stored.RevokedAt == nil {
			s.db.Model(&stored).Update("revoked_at", now)
		}
		return nil, nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, nil, ErrInvalidToken
	}

	raw, record, err := newRefreshToken(user.ID, s.cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := revokeAndChain(tx, stored.ID, now, record.TokenHash); err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	access, err := s.issueAccessToken(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

// revokeAndChain revokes the record and links it to its replacement's hash.
// The revoked_at IS NULL guard is the race arbiter: when two rotations of
// the same token interleave, the loser's update matches zero rows and it
// reports the token invalid instead of double-chaining.
func revokeAndChain(tx *gorm.DB, id uuid.UUID, now time.Time, replacementHash string) error {
	res := tx.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]interface{}{
			"revoked_at":        now,
			"replaced_by_token": replacementHash,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}

// Revoke marks the matching unrevoked record revoked. Unknown or already
// revoked tokens are a no-op.
func (s *AuthService) Revoke(rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashToken(rawToken)).
		Update("revoked_at", time.Now()).Error
}

func (s *AuthService) issueTokenPair(user *models.User) (*TokenPair, error) {
	access, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}

	raw, record, err := newRefreshToken(user.ID, s.cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

func (s *AuthService) issueAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func newRefreshToken(userID uuid.UUID, ttl time.Duration) (string, *models.RefreshToken, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	raw := base64.URLEncoding.EncodeToString(rawBytes)

	record := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}
	return raw, record, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
