package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/service"
	apperrors "github.com/spec-kit/job-board/pkg/util"
)

// UsersHandler exposes the auth and account management endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	return h.register(c, false)
}

// RegisterAdmin handles POST /auth/register-admin.
func (h *UsersHandler) RegisterAdmin(c *fiber.Ctx) error {
	return h.register(c, true)
}

func (h *UsersHandler) register(c *fiber.Ctx, isAdmin bool) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, _, err := h.auth.Register(c.Context(), req.Email, req.Password, isAdmin)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.AuthResponse{
		ID:      user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, _, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.AuthResponse{
		ID:      user.ID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	})
}

// RequestReset handles POST /auth/reset.
func (h *UsersHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	if err := h.auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reset code sent successfully"})
}

// ResetPassword handles POST /auth/reset-password.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.ResetCode == "" || req.Password == "" {
		return apperrors.NewValidationError("email, resetCode and password required", nil)
	}

	if err := h.auth.CompletePasswordReset(c.Context(), req.Email, req.ResetCode, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// GetCredentials handles GET /auth/credentials.
func (h *UsersHandler) GetCredentials(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// ListUsers handles GET /auth.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(items)
}

// GetUser handles GET /auth/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.auth.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateUser handles PUT /auth/update/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateUser(c.Context(), c.Params("id"), service.UserUpdateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeleteUser handles DELETE /auth/delete/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.auth.DeleteUser(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "message": "User account deleted"})
}
