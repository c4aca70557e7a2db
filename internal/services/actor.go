package services

import (
	"github.com/google/uuid"

	"github.com/buildcare/defect-backend/internal/policy"
)

// Actor is the authenticated identity acting on a request. It is resolved
// once at the HTTP boundary (the identity middleware) and passed explicitly
// through every service call; there is no request-scoped global.
type Actor struct {
	ID   uuid.UUID
	Role policy.Role
}
