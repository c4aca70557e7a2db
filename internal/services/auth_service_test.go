package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

func TestSignupIssuesTokenPair(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	user, pair, err := svc.Signup(&dto.SignupRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "longenoughpw",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Role != string(policy.RoleCSR) {
		t.Errorf("default role = %s, want csr", user.Role)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	// Exactly one refresh record, stored as a hash, not the raw token.
	var records []models.RefreshToken
	if err := db.Find(&records).Error; err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("refresh records = %d, want 1", len(records))
	}
	if records[0].TokenHash == pair.RefreshToken {
		t.Error("raw refresh token must never be persisted")
	}
	if records[0].TokenHash != hashToken(pair.RefreshToken) {
		t.Error("stored hash must match the raw token's hash")
	}
	until := time.Until(records[0].ExpiresAt)
	if until < 167*time.Hour || until > 169*time.Hour {
		t.Errorf("refresh expiry %v, want ~7d", until)
	}
}

func TestSignupValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	var ve *ValidationError

	_, _, err := svc.Signup(&dto.SignupRequest{Email: "x@example.com"})
	if !errors.As(err, &ve) {
		t.Errorf("missing password: got %v, want validation error", err)
	}

	_, _, err = svc.Signup(&dto.SignupRequest{Email: "x@example.com", Password: "short"})
	if !errors.As(err, &ve) {
		t.Errorf("short password: got %v, want validation error", err)
	}

	_, _, err = svc.Signup(&dto.SignupRequest{Email: "x@example.com", Password: "longenoughpw", Role: "manager"})
	if !errors.As(err, &ve) {
		t.Errorf("bad role: got %v, want validation error", err)
	}

	// Irregular spelling of a real role is accepted and normalized.
	user, _, err := svc.Signup(&dto.SignupRequest{Email: "exec@example.com", Password: "longenoughpw", Role: "Building-Executive"})
	if err != nil {
		t.Fatalf("irregular role spelling: %v", err)
	}
	if user.Role != string(policy.RoleBuildingExecutive) {
		t.Errorf("role = %s, want building_executive", user.Role)
	}

	// Duplicate email conflicts.
	_, _, err = svc.Signup(&dto.SignupRequest{Email: "exec@example.com", Password: "longenoughpw"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := seedUser(t, db, "bob", policy.RoleTechnician)

	got, pair, err := svc.Authenticate(user.Email, testPassword)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Error("wrong user returned")
	}

	// The access token is a signed JWT with sub and a ~15m expiry.
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(pair.AccessToken, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims["sub"] != user.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], user.ID)
	}
	exp, _ := claims["exp"].(float64)
	until := time.Until(time.Unix(int64(exp), 0))
	if until < 14*time.Minute || until > 16*time.Minute {
		t.Errorf("access expiry %v, want ~15m", until)
	}

	if _, _, err := svc.Authenticate(user.Email, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Authenticate("nobody@example.com", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRotateChainsAndRevokes(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := seedUser(t, db, "carol", policy.RoleCSR)

	_, pair, err := svc.Authenticate(user.Email, testPassword)
	if err != nil {
		t.Fatal(err)
	}

	_, rotated, err := svc.Rotate(pair.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("rotation must mint a new refresh token")
	}

	// Old record: revoked and chained to the replacement's hash.
	var old models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(pair.RefreshToken)).First(&old).Error; err != nil {
		t.Fatal(err)
	}
	if old.RevokedAt == nil {
		t.Error("rotated token must be revoked")
	}
	if old.ReplacedByToken == nil || *old.ReplacedByToken != hashToken(rotated.RefreshToken) {
		t.Error("replaced_by_token must point at the new token's hash")
	}

	// Replay of the rotated-away token fails; the loser of a double
	// rotation sees the same error.
	if _, _, err := svc.Rotate(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replay: got %v, want ErrInvalidToken", err)
	}

	// The replacement still works.
	if _, _, err := svc.Rotate(rotated.RefreshToken); err != nil {
		t.Errorf("rotating the replacement: %v", err)
	}

	// Nothing is ever deleted: signup + two rotations = 3 records.
	var count int64
	db.Model(&models.RefreshToken{}).Count(&count)
	if count != 3 {
		t.Errorf("refresh records = %d, want 3 (audit trail is append-only)", count)
	}
}

func TestRotateExpiredTokenRevokesDefensively(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := seedUser(t, db, "dave", policy.RoleCSR)

	_, pair, err := svc.Authenticate(user.Email, testPassword)
	if err != nil {
		t.Fatal(err)
	}

	err = db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(pair.RefreshToken)).
		Update("expires_at", time.Now().Add(-time.Hour)).Error
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Rotate(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired rotate: got %v, want ErrInvalidToken", err)
	}

	// The expired record was revoked on sight.
	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hashToken(pair.RefreshToken)).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.RevokedAt == nil {
		t.Error("expired token must be marked revoked on use")
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())
	user := seedUser(t, db, "erin", policy.RoleCSR)

	_, pair, err := svc.Authenticate(user.Email, testPassword)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Revoke(pair.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := svc.Revoke(pair.RefreshToken); err != nil {
		t.Fatalf("second revoke must be a no-op: %v", err)
	}
	if err := svc.Revoke("never-issued"); err != nil {
		t.Fatalf("revoking an unknown token must be a no-op: %v", err)
	}

	// A revoked token can never mint a new access token.
	if _, _, err := svc.Rotate(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("rotate after revoke: got %v, want ErrInvalidToken", err)
	}
}

// Two rotations of the same token can interleave between the lookup and the
// guarded revocation. The loser's update matches zero rows and must surface
// ErrInvalidToken rather than re-chaining an already rotated record.
func TestRevokeAndChainLosesRaceOnRevokedRow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "grace", policy.RoleCSR)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken("contested"),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatal(err)
	}

	// Winner commits first.
	if err := revokeAndChain(db, record.ID, time.Now(), hashToken("winner")); err != nil {
		t.Fatalf("first rotation: %v", err)
	}

	// Loser ran its lookup before the winner committed and now tries the
	// same guarded update.
	if err := revokeAndChain(db, record.ID, time.Now(), hashToken("loser")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("second rotation: got %v, want ErrInvalidToken", err)
	}

	// The chain still points at the winner.
	var stored models.RefreshToken
	if err := db.First(&stored, "id = ?", record.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.ReplacedByToken == nil || *stored.ReplacedByToken != hashToken("winner") {
		t.Error("losing rotation must not overwrite the chain")
	}
}

func TestRotateUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig())

	if _, _, err := svc.Rotate("no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
	if _, _, err := svc.Rotate(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token: got %v, want ErrInvalidToken", err)
	}
}
