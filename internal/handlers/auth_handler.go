package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buildcare/defect-backend/internal/config"
	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/middleware"
	"github.com/buildcare/defect-backend/internal/services"
)

// RefreshCookieName is the cookie carrying the raw refresh token. The token
// never appears in a JSON body.
const RefreshCookieName = "refresh_token"

const refreshCookiePath = "/api/auth"

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, pair, err := h.authService.Signup(&req)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: pair.AccessToken, User: user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, pair, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(dto.AuthResponse{Token: pair.AccessToken, User: user})
}

// Refresh rotates the cookie token. Any failure clears the cookie so stale
// or replayed tokens force a fresh login.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshCookieName)

	user, pair, err := h.authService.Rotate(raw)
	if err != nil {
		h.clearRefreshCookie(c)
		return respondError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(dto.AuthResponse{Token: pair.AccessToken, User: user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Revoke(c.Cookies(RefreshCookieName)); err != nil {
		return respondError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "unauthorized"})
	}
	return c.JSON(principal.User)
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, raw string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    raw,
		Path:     refreshCookiePath,
		MaxAge:   int(h.cfg.JWTRefreshExpiry / time.Second),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
