package microgenre

import (
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bookify/internal/catalog"
)

type Handler struct {
	Catalog *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{Catalog: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/microgenres", h.list)
}

// list generates a fresh micro-genre selection from the cached catalog. An
// optional seed query pins the rotation, mainly for the CLI and tests.
func (h *Handler) list(c *gin.Context) {
	ctx := c.Request.Context()

	// Make sure the pool exists; feeds may still be warming.
	if _, err := h.Catalog.MicroGenrePool(ctx); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "micro-genre pool unavailable"})
		return
	}

	books, err := h.Catalog.AllBooks(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}

	seed := time.Now().UnixNano()
	if raw := c.Query("seed"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			seed = n
		}
	}

	genres := Generate(books, rand.New(rand.NewSource(seed)))
	c.JSON(http.StatusOK, gin.H{
		"count":  len(genres),
		"genres": genres,
	})
}
