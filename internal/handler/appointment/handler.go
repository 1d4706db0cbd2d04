package appointment

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/model"
	appointmentService "github.com/jwalitptl/clinic-booking/internal/service/appointment"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
)

type Ledger interface {
	ListSlots(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error)
	ListBooked(ctx context.Context) ([]*model.Slot, bool, error)
}

type Intake interface {
	Submit(ctx context.Context, form *model.IntakeForm) (*model.IntakeOutcome, error)
}

type Handler struct {
	ledger Ledger
	intake Intake
}

func NewHandler(ledger Ledger, intake Intake) *Handler {
	return &Handler{ledger: ledger, intake: intake}
}

// RegisterRoutes mounts the booking API. limit guards the write route.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limit ...gin.HandlerFunc) {
	r.POST("/bookings", append(limit, h.CreateBooking)...)
	r.GET("/slots", h.ListSlots)
	r.GET("/appointments", h.ListAppointments)
}

// CreateBooking runs a full intake from a JSON body. An unavailable slot
// answers 409 with the outcome, since the patient has been recorded.
func (h *Handler) CreateBooking(c *gin.Context) {
	var form model.IntakeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	outcome, err := h.intake.Submit(c.Request.Context(), &form)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if outcome.Booking == nil {
		c.JSON(http.StatusConflict, handler.NewErrorResponse(unavailableMessage(&form), outcome))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(outcome))
}

// unavailableMessage names the slot by its ledger key.
func unavailableMessage(form *model.IntakeForm) string {
	start := form.Date + " " + form.Time
	if t, err := appointmentService.ParseStart(form.Date, form.Time); err == nil {
		start = dateutil.FormatTimestamp(t)
	}
	return apperrors.SlotUnavailable(form.Doctor, start).Error()
}

func (h *Handler) ListSlots(c *gin.Context) {
	var filter model.SlotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	slots, err := h.ledger.ListSlots(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

// ListAppointments returns the booked export, empty before the first booking.
func (h *Handler) ListAppointments(c *gin.Context) {
	slots, _, err := h.ledger.ListBooked(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if slots == nil {
		slots = []*model.Slot{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
