package controllers

import (
	"net/http"
	"time"

	"civicreport-be/apperrors"
	"civicreport-be/config"
	"civicreport-be/middlewares"
	"civicreport-be/models"
	"civicreport-be/store"
	authUtils "civicreport-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	users store.UserStore
	cfg   *config.Config
	log   *logrus.Entry
	now   func() time.Time
}

func NewAuthController(users store.UserStore, cfg *config.Config, log *logrus.Entry) *AuthController {
	return &AuthController{users: users, cfg: cfg, log: log, now: time.Now}
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
	}
}

// RegisterUser handles user registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := ac.now().UTC()
	user := &models.User{
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(); err != nil {
		respondError(c, ac.log, apperrors.Internal("Something went wrong", err))
		return
	}

	created, err := ac.users.Create(c.Request.Context(), user)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	ac.log.WithField("user_id", created.ID.Hex()).Info("user registered")
	c.JSON(http.StatusCreated, userResponse(created))
}

// LoginUser checks credentials and sets the auth cookie. The token is also returned in the
// body for clients that use the Authorization header.
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, ac.log, err)
		return
	}
	if !user.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateToken(user.ID.Hex(), ac.cfg.JWTSecret, authUtils.TokenTTL)
	if err != nil {
		respondError(c, ac.log, apperrors.Internal("Something went wrong", err))
		return
	}

	// Cross-origin cookies in production must not pin a domain.
	domain := ac.cfg.Domain
	if ac.cfg.IsProduction() {
		domain = ""
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    token,
		MaxAge:   int(authUtils.TokenTTL.Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   ac.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	resp := userResponse(user)
	resp["token"] = token
	c.JSON(http.StatusOK, resp)
}

// GetMe retrieves the authenticated user's information
func (ac *AuthController) GetMe(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	user, err := ac.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// LogoutUser handles user logout by clearing the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	c.SetCookie(middlewares.AuthCookie, "", -1, "/", ac.cfg.Domain, ac.cfg.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
