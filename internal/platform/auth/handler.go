package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"emargement-backend/internal/platform/logging"
)

type AuthHandler struct{ svc *Service }

// RegisterRoutes: /auth/* は公開（レート制限付き）、/accounts/* は管理者のみ
func RegisterRoutes(r gin.IRouter, svc *Service, v Verifier, limiter gin.HandlerFunc) {
	h := &AuthHandler{svc: svc}

	pub := r.Group("/auth")
	if limiter != nil {
		pub.Use(limiter)
	}
	pub.POST("/login", h.Login)
	pub.POST("/signup", h.Signup)

	adm := r.Group("/accounts", RequireAuth(v), RequireCapability(CapManageAccounts))
	adm.DELETE("/:id", h.DeleteAccount)
	adm.PATCH("/:id", h.ChangeUsername) // “ユーザー名変更” = id変更
	adm.PUT("/:id/disabled", h.SetDisabled)
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required,max=128"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	ID       string `json:"id" binding:"required,min=3,max=128"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login godoc
// @Summary  Log in and obtain a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} TokenResponse
// @Failure  401 {object} errorDTO
// @Failure  429 {object} errorDTO
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "id and password are required"))
		return
	}

	token, role, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountDisabled) {
			c.JSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "invalid credentials"))
			return
		}
		logging.FromContext(c.Request.Context()).WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "login failed"))
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token, Role: role.String()})
}

// Signup godoc
// @Summary  Create an account with one of the fixed roles
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body SignupRequest true "new account"
// @Success  201 {object} TokenResponse
// @Failure  400 {object} errorDTO
// @Failure  409 {object} errorDTO
// @Router   /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "id, password (8-72 chars) and role are required"))
		return
	}

	token, role, err := h.svc.Signup(c.Request.Context(), req.ID, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "invalid role selected"))
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, errorBody("CONFLICT", "id already taken"))
		default:
			logging.FromContext(c.Request.Context()).WithError(err).Error("signup failed")
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "signup failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{Token: token, Role: role.String()})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "account not found"))
			return
		}
		logging.FromContext(c.Request.Context()).WithError(err).Error("delete account failed")
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "delete failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type ChangeUsernameRequest struct {
	NewID string `json:"new_id" binding:"required,min=3,max=128"`
}

func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	oldID := c.Param("id")

	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "new_id is required"))
		return
	}

	if err := h.svc.ChangeID(c.Request.Context(), oldID, req.NewID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "account not found"))
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, errorBody("CONFLICT", "new id already exists"))
		default:
			logging.FromContext(c.Request.Context()).WithError(err).Error("change id failed")
			c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "change id failed"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "username changed"})
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// SetDisabled godoc
// @Summary   Enable or disable an account
// @Tags      accounts
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path string             true "account id"
// @Param     body body SetDisabledRequest true "disabled flag"
// @Success   200
// @Failure   400 {object} errorDTO
// @Failure   404 {object} errorDTO
// @Router    /accounts/{id}/disabled [put]
func (h *AuthHandler) SetDisabled(c *gin.Context) {
	var req SetDisabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_ARGUMENT", "disabled is required"))
		return
	}

	if err := h.svc.SetDisabled(c.Request.Context(), c.Param("id"), *req.Disabled); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("NOT_FOUND", "account not found"))
			return
		}
		logging.FromContext(c.Request.Context()).WithError(err).Error("set disabled failed")
		c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "update failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"disabled": *req.Disabled})
}
