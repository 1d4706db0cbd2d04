// Package intake serves the front-desk page: the intake form and read-only
// views of the four clinic tables.
package intake

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/pkg/dateutil"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/flash"
)

const (
	// FlashCookie names the cookie carrying the flash key across the redirect.
	FlashCookie = "clinic_flash"

	msgUnavailable = "Sorry, that slot is not available. Try another time."
	msgReminders   = "Confirmation + reminders logged in the communications log."
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the page templates for engine.SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type Submitter interface {
	Submit(ctx context.Context, form *model.IntakeForm) (*model.IntakeOutcome, error)
}

type Patients interface {
	List(ctx context.Context) ([]*model.Patient, error)
}

type Ledger interface {
	ListSlots(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error)
	ListBooked(ctx context.Context) ([]*model.Slot, bool, error)
}

type Communications interface {
	List(ctx context.Context) ([]*model.CommunicationEntry, bool, error)
}

// Options is what the form offers.
type Options struct {
	ClinicName string
	Doctors    []model.Doctor
	Durations  []int
}

type Handler struct {
	intake   Submitter
	patients Patients
	ledger   Ledger
	comms    Communications
	flash    *flash.Store
	opts     Options
}

func NewHandler(intake Submitter, patients Patients, ledger Ledger, comms Communications, store *flash.Store, opts Options) *Handler {
	return &Handler{
		intake:   intake,
		patients: patients,
		ledger:   ledger,
		comms:    comms,
		flash:    store,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes, limit ...gin.HandlerFunc) {
	r.GET("/", h.Index)
	r.POST("/book", append(limit, h.Book)...)
}

// page is the data behind index.html.
type page struct {
	Options
	Messages       []flash.Message
	Errors         []middleware.ValidationError
	Form           map[string]string
	Patients       []*model.Patient
	Slots          []*model.Slot
	Booked         []*model.Slot
	Communications []*model.CommunicationEntry
}

func (h *Handler) Index(c *gin.Context) {
	p := &page{Options: h.opts}
	if key, err := c.Cookie(FlashCookie); err == nil {
		if e, ok := h.flash.Pop(key); ok {
			p.Messages = e.Messages
			p.Form = e.Form
		}
		c.SetCookie(FlashCookie, "", -1, "/", "", false, true)
	}
	h.render(c, http.StatusOK, p)
}

// Book runs the intake and redirects back to the page with the outcome.
// Input the page cannot accept is answered directly with the form redrawn.
// A slot that was not free keeps the form across the redirect so another
// time can be tried.
func (h *Handler) Book(c *gin.Context) {
	var form model.IntakeForm
	if err := c.ShouldBind(&form); err != nil {
		p := &page{Options: h.opts, Form: form.FormValues()}
		if p.Errors = middleware.ValidationErrors(err); p.Errors == nil {
			p.Messages = []flash.Message{{Kind: flash.KindError, Text: err.Error()}}
		}
		h.render(c, http.StatusBadRequest, p)
		return
	}

	outcome, err := h.intake.Submit(c.Request.Context(), &form)
	if err != nil {
		_ = c.Error(err)
		h.render(c, apperrors.StatusOf(err), &page{
			Options:  h.opts,
			Form:     form.FormValues(),
			Messages: []flash.Message{{Kind: flash.KindError, Text: failureText(err)}},
		})
		return
	}

	entry := flash.Entry{Messages: outcomeMessages(outcome)}
	if outcome.Booking == nil {
		entry.Form = form.FormValues()
	}
	key := h.flash.Put(entry)
	c.SetCookie(FlashCookie, key, 300, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func outcomeMessages(o *model.IntakeOutcome) []flash.Message {
	var msgs []flash.Message
	if o.IsNew {
		msgs = append(msgs, flash.Message{Kind: flash.KindInfo, Text: fmt.Sprintf("New patient registered as %s.", o.Patient.PatientID)})
	} else {
		msgs = append(msgs, flash.Message{Kind: flash.KindInfo, Text: fmt.Sprintf("Returning patient %s.", o.Patient.PatientID)})
	}
	if o.Booking == nil {
		return append(msgs, flash.Message{Kind: flash.KindError, Text: msgUnavailable})
	}
	b := o.Booking
	return append(msgs,
		flash.Message{Kind: flash.KindSuccess, Text: fmt.Sprintf("Appointment booked with %s at %s on %s for %d minutes.",
			b.Doctor, b.Location, b.Start.Format(dateutil.DisplayLayout), b.Duration)},
		flash.Message{Kind: flash.KindInfo, Text: msgReminders},
	)
}

func failureText(err error) string {
	if apperrors.IsParse(err) {
		return err.Error()
	}
	return "Something went wrong saving your request. Nothing further was changed; please try again."
}

// render re-reads every table. A table that cannot be read fails the page.
func (h *Handler) render(c *gin.Context, status int, p *page) {
	ctx := c.Request.Context()
	var err error
	if p.Patients, err = h.patients.List(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if p.Slots, err = h.ledger.ListSlots(ctx, model.SlotFilter{}); err != nil {
		h.fail(c, err)
		return
	}
	if p.Booked, _, err = h.ledger.ListBooked(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if p.Communications, _, err = h.comms.List(ctx); err != nil {
		h.fail(c, err)
		return
	}
	if p.Form == nil {
		p.Form = map[string]string{}
	}
	c.HTML(status, "index.html", p)
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "could not load clinic data")
}
