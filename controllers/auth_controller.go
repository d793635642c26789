package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dailypost/dailypost/auth"
	"github.com/dailypost/dailypost/middleware"
	"github.com/dailypost/dailypost/utils"
)

// AuthController handles admin login and logout.
type AuthController struct {
	authenticator auth.Authenticator
	ttl           time.Duration
}

// NewAuthController creates a new AuthController issuing tokens valid for ttl.
func NewAuthController(a auth.Authenticator, ttl time.Duration) *AuthController {
	return &AuthController{authenticator: a, ttl: ttl}
}

// Login verifies admin credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "username and password are required")
		return
	}

	admin, err := a.authenticator.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			utils.Logger.Info("admin login rejected", zap.String("username", req.Username), zap.String("ip", ctx.ClientIP()))
			utils.Error(ctx, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		utils.Logger.Error("admin login failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, "login failed")
		return
	}

	token, expiresAt, err := utils.GenerateToken(admin.Username, a.ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.SuccessMessage(ctx, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"admin":     admin,
		"expiresAt": expiresAt,
	})
}

// Logout revokes the caller's token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenID := ctx.GetString(middleware.ContextTokenIDKey)
	expiresAt, _ := ctx.Get(middleware.ContextTokenExpiryKey)
	exp, ok := expiresAt.(time.Time)
	if !ok || exp.IsZero() {
		exp = time.Now().Add(a.ttl)
	}
	utils.BlacklistToken(ctx.Request.Context(), tokenID, exp)
	utils.SuccessMessage(ctx, http.StatusOK, "Logged out", nil)
}

// Me returns the admin the token belongs to.
func (a *AuthController) Me(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"username": ctx.GetString(middleware.ContextUsernameKey)})
}
