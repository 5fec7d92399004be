package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
)

type ActivityHandler struct {
	BaseHandler
	service services.ActivityService
}

func NewActivityHandler(service services.ActivityService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListActivity renders the most recent activity entries
// @Tags activity
// @Router /activity [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	entries, err := h.service.Recent(c.Request.Context(), services.DefaultActivityLimit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.render(c, http.StatusOK, "activity.html", gin.H{
		"Title":   "Activity",
		"Entries": entries,
	})
}
