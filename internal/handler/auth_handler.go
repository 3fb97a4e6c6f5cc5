package handler

import (
	"net/http"
	"strings"
	"time"

	"leasing-portal/internal/mailer"
	"leasing-portal/internal/model"
	"leasing-portal/internal/repository"
	"leasing-portal/internal/service"
	"leasing-portal/pkg/jwtutil"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and the current-user endpoint
type AuthHandler struct {
	db       *gorm.DB
	profiles repository.ProfileRepository
	admins   *service.AdminService
	mail     *mailer.Mailer
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(db *gorm.DB, profiles repository.ProfileRepository, admins *service.AdminService, mail *mailer.Mailer) *AuthHandler {
	return &AuthHandler{db: db, profiles: profiles, admins: admins, mail: mail}
}

// Register creates a user account and, when an organization is supplied,
// its profile. Notification emails are fire-and-forget.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email          string `json:"email"`
		Password       string `json:"password"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		OrganizationID string `json:"organization_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := h.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if req.OrganizationID != "" {
		if _, err := h.admins.CreateUserProfile(user.ID, req.OrganizationID, req.FirstName, req.LastName); err != nil {
			// The account exists; the profile can be created from the
			// admin panel later
			log.Error("Failed to create user profile during registration",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	userName := strings.TrimSpace(req.FirstName + " " + req.LastName)
	if userName == "" {
		userName = req.Email
	}
	go h.mail.SendNewUserNotification(user.Email, userName)
	go h.mail.SendWelcomeEmail(user.Email, userName)

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Login verifies credentials and issues a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Me returns the authenticated user, their profile, organization and admin
// permissions. A missing profile is an empty-data state, not an error.
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)

	userID, _ := c.Get("user_id").(string)
	email, _ := c.Get("email").(string)

	response := echo.Map{
		"user": map[string]interface{}{
			"id":    userID,
			"email": email,
		},
		"profile":      nil,
		"organization": nil,
		"admin":        nil,
	}

	profile, err := h.profiles.ProfileForUser(userID)
	if err != nil {
		log.Error("Failed to fetch profile", zap.String("user_id", userID), zap.Error(err))
	}
	if profile != nil {
		response["profile"] = profile

		var org model.Organization
		if err := h.db.First(&org, "id = ?", profile.OrganizationID).Error; err == nil {
			response["organization"] = org
		} else {
			log.Error("Failed to fetch organization", zap.String("organization_id", profile.OrganizationID), zap.Error(err))
		}
	}

	perms, err := h.admins.GetAdminPermissions(userID)
	if err != nil {
		log.Error("Failed to fetch admin permissions", zap.String("user_id", userID), zap.Error(err))
	}
	if perms != nil {
		response["admin"] = perms
	}

	return c.JSON(http.StatusOK, response)
}
