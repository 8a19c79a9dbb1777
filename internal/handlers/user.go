package handlers

import (
	"log"
	"strings"

	"taskmaster/internal/middleware"
	"taskmaster/internal/models"
	"taskmaster/internal/services"
	"taskmaster/pkg/auth"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles registration, login and profile endpoints
type UserHandler struct {
	jwtAuth         *auth.JWTAuth
	userService     *services.UserService
	activityService *services.ActivityService
}

// NewUserHandler creates a new user handler
func NewUserHandler(jwtAuth *auth.JWTAuth, userService *services.UserService, activityService *services.ActivityService) *UserHandler {
	return &UserHandler{
		jwtAuth:         jwtAuth,
		userService:     userService,
		activityService: activityService,
	}
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the request body for profile updates
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user account
// POST /api/users
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide a name and a valid email address",
		})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	existing, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User with this email already exists",
		})
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create account",
		})
	}

	user, err := h.userService.Create(req.Name, req.Email, passwordHash)
	if err != nil {
		return respondError(c, err)
	}

	token, err := h.jwtAuth.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate authentication token",
		})
	}

	// Registering starts an authenticated session, so it counts as a login
	// day for the streak calendar
	h.activityService.RecordActivity(user.ID, models.ActivityLogin, 0)

	log.Printf("✅ User registered: %s (%s)", user.Email, user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

// Login authenticates a user and returns a token
// POST /api/users/login
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := h.userService.GetByEmail(req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
		})
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
		})
	}

	token, err := h.jwtAuth.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate authentication token",
		})
	}

	if err := h.userService.TouchLastLogin(user.ID); err != nil {
		log.Printf("⚠️ Failed to update last login for %s: %v", user.ID, err)
	}

	h.activityService.RecordActivity(user.ID, models.ActivityLogin, 0)

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

// GetProfile returns the authenticated user's profile
// GET /api/users/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile updates name, email and optionally the password
// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	passwordHash := ""
	if req.Password != "" {
		if err := auth.ValidatePassword(req.Password); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		var err error
		passwordHash, err = auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to update profile",
			})
		}
	}

	user, err := h.userService.UpdateProfile(middleware.UserID(c), req.Name, req.Email, passwordHash)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}
