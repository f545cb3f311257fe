package shelf

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookify/internal/session"
	"bookify/internal/sync"
	"bookify/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *sync.Hub
}

func NewHandler(repo *Repo, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/shelves", h.list)
	rg.POST("/users/shelves", h.create)
	rg.GET("/users/shelves/current", h.getCurrent)
	rg.PUT("/users/shelves/current", h.setCurrent)
	rg.GET("/users/shelves/:shelf_id", h.getOne)
	rg.POST("/users/shelves/:shelf_id/books", h.addBook)
	rg.DELETE("/users/shelves/:shelf_id/rows/:row_index/books/:book_index", h.removeBook)
	rg.POST("/users/shelves/:shelf_id/rows", h.addRow)
	rg.DELETE("/users/shelves/:shelf_id/rows/:row_index", h.deleteRow)
	rg.PUT("/users/shelves/:shelf_id/settings", h.updateSettings)
	rg.POST("/users/shelves/settings/preview", h.previewSettings)

	// Legacy flat-shelf surface. POST auto-creates the default shelf for a
	// user who has none yet.
	rg.GET("/users/shelf", h.mirror)
	rg.POST("/users/shelf/books", h.addBookCurrent)
}

func (h *Handler) list(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	shelves, err := h.Repo.List(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	currentID, err := h.Repo.CurrentID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_shelf_id": currentID,
		"shelves":          shelves,
	})
}

type createReq struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultShelfName
	}

	s, err := h.Repo.Create(c.Request.Context(), claims.UserID, name)
	if err != nil {
		h.fail(c, err, "create failed")
		return
	}

	h.broadcast("shelf.created", claims.UserID, s, "")
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) getOne(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) getCurrent(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := h.Repo.CurrentID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no shelves yet"})
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}
	c.JSON(http.StatusOK, s)
}

type switchReq struct {
	ID int64 `json:"id"`
}

func (h *Handler) setCurrent(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req switchReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shelf id required"})
		return
	}

	if err := h.Repo.SetCurrent(c.Request.Context(), claims.UserID, req.ID); err != nil {
		h.fail(c, err, "switch failed")
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, req.ID)
	if err != nil {
		h.fail(c, err, "switch failed")
		return
	}

	h.broadcast("shelf.switched", claims.UserID, s, "")
	c.JSON(http.StatusOK, s)
}

func (h *Handler) addBook(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}

	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	if err := AddBook(s, book); err != nil {
		h.fail(c, err, "add failed")
		return
	}
	if err := h.Repo.Save(c.Request.Context(), claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.book_added", claims.UserID, s, book.Title)
	c.JSON(http.StatusOK, s)
}

// addBookCurrent is the legacy add path: the book lands on the current
// shelf, and a user with no shelves gets the default one created first.
func (h *Handler) addBookCurrent(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	id, err := h.Repo.CurrentID(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		return
	}

	var s *models.Shelf
	if id == 0 {
		s, err = h.Repo.Create(ctx, claims.UserID, DefaultShelfName)
		if err != nil {
			h.fail(c, err, "add failed")
			return
		}
		h.broadcast("shelf.created", claims.UserID, s, "")
	} else {
		s, err = h.Repo.Get(ctx, claims.UserID, id)
		if err != nil {
			h.fail(c, err, "add failed")
			return
		}
	}

	if err := AddBook(s, book); err != nil {
		h.fail(c, err, "add failed")
		return
	}
	if err := h.Repo.Save(ctx, claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.book_added", claims.UserID, s, book.Title)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) removeBook(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}
	rowIdx, err1 := strconv.Atoi(c.Param("row_index"))
	bookIdx, err2 := strconv.Atoi(c.Param("book_index"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position"})
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	var title string
	if rowIdx >= 0 && rowIdx < len(s.Rows) && bookIdx >= 0 && bookIdx < len(s.Rows[rowIdx].Books) {
		title = s.Rows[rowIdx].Books[bookIdx].Title
	}

	if err := RemoveBook(s, rowIdx, bookIdx); err != nil {
		h.fail(c, err, "remove failed")
		return
	}
	if err := h.Repo.Save(c.Request.Context(), claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.book_removed", claims.UserID, s, title)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) addRow(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	if err := AddRow(s); err != nil {
		h.fail(c, err, "add row failed")
		return
	}
	if err := h.Repo.Save(c.Request.Context(), claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.rows_changed", claims.UserID, s, "")
	c.JSON(http.StatusOK, s)
}

func (h *Handler) deleteRow(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}
	rowIdx, err := strconv.Atoi(c.Param("row_index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position"})
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	if err := DeleteRow(s, rowIdx); err != nil {
		h.fail(c, err, "delete row failed")
		return
	}
	if err := h.Repo.Save(c.Request.Context(), claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.rows_changed", claims.UserID, s, "")
	c.JSON(http.StatusOK, s)
}

func (h *Handler) updateSettings(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := shelfID(c)
	if !ok {
		return
	}

	var in models.ShelfSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	s, err := h.Repo.Get(c.Request.Context(), claims.UserID, id)
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	s.Settings = ResolveSettings(in)
	if err := h.Repo.Save(c.Request.Context(), claims.UserID, s); err != nil {
		h.fail(c, err, "save failed")
		return
	}

	h.broadcast("shelf.settings", claims.UserID, s, "")
	c.JSON(http.StatusOK, s)
}

// previewSettings resolves a settings payload without touching any shelf.
// The UI uses it to render live previews while the user edits.
func (h *Handler) previewSettings(c *gin.Context) {
	var in models.ShelfSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	c.JSON(http.StatusOK, ResolveSettings(in))
}

func (h *Handler) mirror(c *gin.Context) {
	claims := session.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	books, err := h.Repo.Mirror(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *Handler) broadcast(eventType, userID string, s *models.Shelf, title string) {
	if h.Hub == nil {
		return
	}
	ev := sync.ShelfEvent{
		Type:      eventType,
		UserID:    userID,
		ShelfID:   s.ID,
		ShelfName: s.Name,
		BookTitle: title,
		Rows:      len(s.Rows),
		Books:     s.TotalBooks(),
		At:        time.Now().UTC(),
	}
	go h.Hub.Broadcast(ev)
}

// fail maps domain errors onto HTTP statuses. Capacity and emptiness rules
// are conflicts, not client mistakes: the request was well-formed, the shelf
// state just does not allow it.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingTitle), errors.Is(err, ErrBadPosition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateBook),
		errors.Is(err, ErrShelfFull),
		errors.Is(err, ErrRowLimitReached),
		errors.Is(err, ErrRowNotEmpty),
		errors.Is(err, ErrLastRowProtected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrShelfNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStorageQuota):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func shelfID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("shelf_id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelf id"})
		return 0, false
	}
	return id, true
}
