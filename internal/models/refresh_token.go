package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken stores only the SHA-256 hash of an issued refresh token.
// Rotation links the old record to its replacement through ReplacedByToken,
// forming a chain that doubles as a reuse-detection audit trail. Records are
// revoked, never deleted.
type RefreshToken struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash       string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt       *time.Time `json:"revoked_at"`
	ReplacedByToken *string    `gorm:"size:64" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
}
