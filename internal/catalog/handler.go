package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes mounts the catalog surface. Browsing needs no session; the
// feeds are the same for everyone.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/categories", h.listCategories)
	rg.GET("/catalog/categories/:name", h.category)
	rg.GET("/catalog/featured", h.featured)
	rg.GET("/catalog/search", h.search)
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": Categories()})
}

func (h *Handler) category(c *gin.Context) {
	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	if _, ok := CategoryQueries[name]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}

	books, err := h.Service.Category(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "category feed unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": name,
		"count":    len(books),
		"books":    books,
	})
}

func (h *Handler) featured(c *gin.Context) {
	genre := strings.ToLower(strings.TrimSpace(c.DefaultQuery("genre", "suggested")))

	books, err := h.Service.Featured(c.Request.Context(), genre)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "featured feed unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"genre": genre, "books": books})
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("q")

	books, err := h.Service.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "count": len(books), "books": books})
}
