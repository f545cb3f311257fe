package annotations

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookify/internal/session"
	"bookify/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/annotations", h.list)
	rg.GET("/annotations/:book_key", h.getOne)
	rg.PUT("/annotations/:book_key", h.upsert)
	rg.DELETE("/annotations/:book_key", h.remove)

	rg.GET("/annotations/:book_key/notes", h.listNotes)
	rg.POST("/annotations/:book_key/notes", h.addNote)
	rg.DELETE("/notes/:note_id", h.deleteNote)
}

type upsertReq struct {
	Rating     int    `json:"rating"`
	Review     string `json:"review"`
	FinishedAt *int64 `json:"finished_at"` // unix seconds; null clears it
}

func (h *Handler) upsert(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookKey, ok := bookKey(c)
	if !ok {
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
		return
	}

	a := models.Annotation{
		UserID:  claims.UserID,
		BookKey: bookKey,
		Rating:  req.Rating,
		Review:  strings.TrimSpace(req.Review),
	}
	if req.FinishedAt != nil {
		t := unixTime(*req.FinishedAt)
		a.FinishedAt = &t
	}

	if err := h.Repo.Upsert(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, bookKey)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if items == nil {
		items = []models.Annotation{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key, ok := bookKey(c)
	if !ok {
		return
	}

	a, err := h.Repo.Get(c.Request.Context(), claims.UserID, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) remove(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key, ok := bookKey(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), claims.UserID, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type noteReq struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

func (h *Handler) addNote(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key, ok := bookKey(c)
	if !ok {
		return
	}

	var req noteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	if req.Page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 0"})
		return
	}

	note, err := h.Repo.AddNote(c.Request.Context(), claims.UserID, key, req.Page, strings.TrimSpace(req.Text))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) listNotes(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	key, ok := bookKey(c)
	if !ok {
		return
	}

	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	notes, total, err := h.Repo.ListNotes(c.Request.Context(), claims.UserID, key, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  notes,
	})
}

func (h *Handler) deleteNote(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	noteID := strings.TrimSpace(c.Param("note_id"))
	if noteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note id required"})
		return
	}

	deleted, err := h.Repo.DeleteNote(c.Request.Context(), claims.UserID, noteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func bookKey(c *gin.Context) (string, bool) {
	key := strings.TrimSpace(c.Param("book_key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book key required"})
		return "", false
	}
	return strings.ToLower(key), true
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
