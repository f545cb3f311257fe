package account

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookify/internal/session"
)

var validThemes = map[string]bool{"dark": true, "light": true}

type Handler struct {
	Repo   *Repo
	Tokens session.TokenService
}

func NewHandler(repo *Repo, tokens session.TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

// RegisterPublicRoutes mounts the session opener; everything else requires
// a token.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/session", h.openSession)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
	rg.PUT("/users/me", h.updateProfile)
	rg.PUT("/users/me/email", h.updateEmail)
	rg.GET("/users/me/theme", h.theme)
	rg.PUT("/users/me/theme", h.setTheme)
	rg.DELETE("/users/me", h.deleteAccount)
}

type sessionReq struct {
	Email string `json:"email"`
}

// openSession issues an identity token for an email, creating the account
// on first sight. There is deliberately no credential check.
func (h *Handler) openSession(c *gin.Context) {
	var req sessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	u, err := h.Repo.GetOrCreateByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session failed"})
		return
	}

	token, exp, err := h.Tokens.Sign(u.ID, u.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC(),
		"user":       u,
	})
}

func (h *Handler) me(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	u, err := h.Repo.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account deleted"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type profileReq struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultName
	}

	if err := h.Repo.UpdateProfile(c.Request.Context(), claims.UserID, name, strings.TrimSpace(req.Bio)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	u, err := h.Repo.Get(c.Request.Context(), claims.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type emailReq struct {
	Email string `json:"email"`
}

func (h *Handler) updateEmail(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req emailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email required"})
		return
	}

	if err := h.Repo.UpdateEmail(c.Request.Context(), claims.UserID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account deleted"})
			return
		}
		// Almost certainly the UNIQUE constraint.
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}

	// The old token still names the old email; issue a fresh one.
	token, exp, err := h.Tokens.Sign(claims.UserID, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp.UTC()})
}

func (h *Handler) theme(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	theme, err := h.Repo.Theme(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

type themeReq struct {
	Theme string `json:"theme"`
}

func (h *Handler) setTheme(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req themeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	theme := strings.ToLower(strings.TrimSpace(req.Theme))
	if !validThemes[theme] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be dark or light"})
		return
	}

	if err := h.Repo.SetTheme(c.Request.Context(), claims.UserID, theme); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *Handler) deleteAccount(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), claims.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
