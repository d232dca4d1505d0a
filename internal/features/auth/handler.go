// ================== internal/features/auth/handler.go ==================
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridharani/dharani-api/internal/config"
	"github.com/meridharani/dharani-api/internal/pkg/geo"
	"github.com/meridharani/dharani-api/internal/pkg/response"
	"github.com/meridharani/dharani-api/internal/pkg/token"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Handler struct {
	repo *Repository
	cfg  *config.Config
}

func NewHandler(repo *Repository, cfg *config.Config) *Handler {
	return &Handler{repo: repo, cfg: cfg}
}

// Register godoc
// @Summary Register a new citizen or worker account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	loc := Location{
		Point:   geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		Area:    req.Area,
		City:    req.City,
		Pincode: req.Pincode,
	}
	if !geo.Valid(loc.Point) {
		response.ValidationFailed(c, "Invalid coordinates")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalServerError(c, "Failed to process password")
		return
	}

	user := &User{
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		FullName:     req.FullName,
		Location:     loc,
	}

	switch req.Role {
	case RoleCitizen:
		user.Citizen = &CitizenProfile{Level: LevelEcoRookie}
	case RoleWorker:
		user.Worker = &WorkerProfile{
			Available:       true,
			Reputation:      5.0,
			MaxConcurrent:   h.cfg.DefaultWorkerCap,
			Specializations: req.Skills,
		}
	}

	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			response.Conflict(c, "Email already registered", "DUPLICATE_EMAIL")
			return
		}
		response.DatabaseError(c, "Failed to create account")
		return
	}

	tok, err := token.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		response.InternalServerError(c, "Failed to issue token")
		return
	}

	response.Created(c, AuthResponse{Token: tok, User: user})
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.DatabaseError(c, "Failed to look up account")
		return
	}
	if user == nil {
		response.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "Invalid email or password")
		return
	}

	tok, err := token.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		response.InternalServerError(c, "Failed to issue token")
		return
	}

	response.Success(c, AuthResponse{Token: tok, User: user})
}

// GoogleSignIn godoc
// @Summary Sign in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleSignInRequest true "Google ID token"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/google [post]
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var req GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	googleUser, err := VerifyGoogleToken(c.Request.Context(), req.IDToken, h.cfg.GoogleClientID)
	if err != nil {
		response.Unauthorized(c, "Invalid Google token")
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), googleUser.Email)
	if err != nil {
		response.DatabaseError(c, "Failed to look up account")
		return
	}

	// First Google sign-in creates a citizen account; location is filled in
	// later via the profile endpoints.
	if user == nil {
		role := req.Role
		if role == "" {
			role = RoleCitizen
		}
		user = &User{
			Email:    googleUser.Email,
			Role:     role,
			FullName: googleUser.Name,
		}
		if role == RoleWorker {
			user.Worker = &WorkerProfile{Available: true, Reputation: 5.0, MaxConcurrent: h.cfg.DefaultWorkerCap}
		} else {
			user.Citizen = &CitizenProfile{Level: LevelEcoRookie}
		}
		if err := h.repo.Create(c.Request.Context(), user); err != nil {
			response.DatabaseError(c, "Failed to create account")
			return
		}
	}

	tok, err := token.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		response.InternalServerError(c, "Failed to issue token")
		return
	}

	response.Success(c, AuthResponse{Token: tok, User: user})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.repo.GetByID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.DatabaseError(c, "Failed to load profile")
		return
	}
	if user == nil {
		response.NotFound(c, "Account not found")
		return
	}

	response.Success(c, user)
}

// UpdateLocation godoc
// @Summary Update the authenticated user's location
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateLocationRequest true "New location"
// @Success 200 {object} response.APIResponse
// @Router /auth/me/location [put]
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	loc := Location{
		Point:   geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		Area:    req.Area,
		City:    req.City,
		Pincode: req.Pincode,
	}
	if !geo.Valid(loc.Point) {
		response.ValidationFailed(c, "Invalid coordinates")
		return
	}

	if err := h.repo.UpdateLocation(c.Request.Context(), c.GetString("userID"), loc); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"location": loc})
}

// UpdateDeviceToken godoc
// @Summary Register a device token for push notifications
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateDeviceTokenRequest true "FCM device token"
// @Success 200 {object} response.APIResponse
// @Router /auth/me/device [put]
func (h *Handler) UpdateDeviceToken(c *gin.Context) {
	var req UpdateDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := h.repo.UpdateDeviceToken(c.Request.Context(), c.GetString("userID"), req.DeviceToken); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "Device token updated"})
}
