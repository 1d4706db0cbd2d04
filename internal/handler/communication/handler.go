package communication

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/model"
)

type Log interface {
	List(ctx context.Context) ([]*model.CommunicationEntry, bool, error)
}

type Handler struct {
	log Log
}

func NewHandler(log Log) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/communications", h.ListCommunications)
}

func (h *Handler) ListCommunications(c *gin.Context) {
	entries, _, err := h.log.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []*model.CommunicationEntry{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}
