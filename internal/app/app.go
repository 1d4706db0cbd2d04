// Package app assembles the clinic service from configuration.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-booking/config"
	"github.com/jwalitptl/clinic-booking/internal/handler"
	appointmentHandler "github.com/jwalitptl/clinic-booking/internal/handler/appointment"
	"github.com/jwalitptl/clinic-booking/internal/handler/communication"
	intakeHandler "github.com/jwalitptl/clinic-booking/internal/handler/intake"
	patientHandler "github.com/jwalitptl/clinic-booking/internal/handler/patient"
	"github.com/jwalitptl/clinic-booking/internal/messaging"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository/flatfile"
	"github.com/jwalitptl/clinic-booking/internal/router"
	appointmentService "github.com/jwalitptl/clinic-booking/internal/service/appointment"
	intakeService "github.com/jwalitptl/clinic-booking/internal/service/intake"
	"github.com/jwalitptl/clinic-booking/internal/service/notification"
	patientService "github.com/jwalitptl/clinic-booking/internal/service/patient"
	"github.com/jwalitptl/clinic-booking/internal/service/seed"
	"github.com/jwalitptl/clinic-booking/pkg/flash"
	"github.com/jwalitptl/clinic-booking/pkg/logger"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

const metricsNamespace = "clinic"

// App holds the wired services and the HTTP router.
type App struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Seeder   *seed.Service
	Router   *router.Router
}

// Stores opens the four flat files named by cfg, instrumented with m.
type Stores struct {
	Patients       flatfile.Table
	Schedule       flatfile.Table
	Export         flatfile.Table
	Communications flatfile.Table
}

func OpenStores(cfg config.StorageConfig, m *metrics.Metrics) (*Stores, error) {
	open := func(path, name string) (flatfile.Table, error) {
		t, err := flatfile.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s store: %w", name, err)
		}
		return flatfile.Instrument(t, name, m), nil
	}
	var (
		s   Stores
		err error
	)
	if s.Patients, err = open(cfg.PatientsPath(), "patients"); err != nil {
		return nil, err
	}
	if s.Schedule, err = open(cfg.SchedulePath(), "schedule"); err != nil {
		return nil, err
	}
	if s.Export, err = open(cfg.ExportPath(), "export"); err != nil {
		return nil, err
	}
	if s.Communications, err = open(cfg.CommunicationsPath(), "communications"); err != nil {
		return nil, err
	}
	return &s, nil
}

// Roster converts the configured doctors.
func Roster(cfg config.ClinicConfig) []model.Doctor {
	out := make([]model.Doctor, 0, len(cfg.Doctors))
	for _, d := range cfg.Doctors {
		out = append(out, model.Doctor{Name: d.Name, Location: d.Location})
	}
	return out
}

// SeedConfig derives the seed grid from the clinic section.
func SeedConfig(cfg config.ClinicConfig) seed.Config {
	return seed.Config{
		Doctors:      Roster(cfg),
		DaysAhead:    cfg.DaysAhead,
		SlotsPerDay:  cfg.SlotsPerDay,
		SlotMinutes:  cfg.SlotMinutes,
		DayStart:     cfg.DayStart,
		SeedPatients: cfg.SeedPatients,
	}
}

// NewSeeder wires only what seeding needs.
func NewSeeder(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*seed.Service, error) {
	stores, err := OpenStores(cfg.Storage, m)
	if err != nil {
		return nil, err
	}
	return seed.NewService(
		flatfile.NewPatientRepository(stores.Patients),
		flatfile.NewSlotRepository(stores.Schedule),
		SeedConfig(cfg.Clinic),
		log,
	), nil
}

// New wires repositories, services, handlers and the router. Routes are
// registered; nothing is seeded.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(metricsNamespace, reg)

	if err := middleware.RegisterValidators(cfg.Clinic.DoctorNames(), cfg.Clinic.Durations); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	stores, err := OpenStores(cfg.Storage, m)
	if err != nil {
		return nil, err
	}
	patientRepo := flatfile.NewPatientRepository(stores.Patients)
	slotRepo := flatfile.NewSlotRepository(stores.Schedule)
	exportRepo := flatfile.NewExportRepository(stores.Export)
	commsRepo := flatfile.NewCommunicationRepository(stores.Communications)

	seeder := seed.NewService(patientRepo, slotRepo, SeedConfig(cfg.Clinic), log)
	patientSvc := patientService.NewService(patientRepo, m, log)
	bookingSvc := appointmentService.NewService(slotRepo, exportRepo, m, log)
	sender := messaging.NewLogSender(commsRepo, cfg.Notification.BodyLimit, log)
	notificationSvc := notification.NewService(sender, commsRepo, cfg.Notification.SubjectPrefix, m, log)
	intakeSvc := intakeService.NewService(patientSvc, bookingSvc, notificationSvc, m, log)

	metricsPath := ""
	if cfg.Monitoring.PrometheusEnabled {
		metricsPath = cfg.Monitoring.MetricsPath
	}
	r := router.NewRouter(
		handler.NewHandler(reg, cfg.Storage.Dir),
		intakeHandler.NewHandler(intakeSvc, patientSvc, bookingSvc, notificationSvc, flash.NewStore(cfg.Flash.TTL), intakeHandler.Options{
			ClinicName: cfg.Clinic.Name,
			Doctors:    Roster(cfg.Clinic),
			Durations:  cfg.Clinic.Durations,
		}),
		appointmentHandler.NewHandler(bookingSvc, intakeSvc),
		patientHandler.NewHandler(patientSvc),
		communication.NewHandler(notificationSvc),
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			MetricsPrefix:    "clinic_http",
			MetricsPath:      metricsPath,
			Registerer:       reg,
		},
	)
	r.Setup()

	return &App{
		Registry: reg,
		Metrics:  m,
		Seeder:   seeder,
		Router:   r,
	}, nil
}
