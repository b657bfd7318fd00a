package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	labcatalog "github.com/jwalitptl/lims-api/internal/catalog"
	"github.com/jwalitptl/lims-api/internal/handler"
)

// Handler serves the static test catalog.
type Handler struct {
	catalog *labcatalog.Catalog
}

func NewHandler(c *labcatalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tests", h.ListTests)
}

func (h *Handler) ListTests(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.catalog.List()))
}
