package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/service/patient"
)

type Handler struct {
	service patient.Service
}

func NewHandler(service patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limit ...gin.HandlerFunc) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("/lookup", append(limit, h.LookupPatient)...)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

// LookupPatient finds the patient matching name and date of birth, creating
// them when absent. 201 means a new row was written.
func (h *Handler) LookupPatient(c *gin.Context) {
	var req model.PatientDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	p, isNew, err := h.service.FindOrCreate(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, handler.NewSuccessResponse(p))
}
