package appointment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
	"github.com/jwalitptl/clinic-booking/internal/repository/flatfile"
	"github.com/jwalitptl/clinic-booking/internal/service/seed"
	apperrors "github.com/jwalitptl/clinic-booking/pkg/errors"
	"github.com/jwalitptl/clinic-booking/pkg/metrics"
)

type fixture struct {
	svc     *Service
	ledger  repository.SlotRepository
	export  repository.ExportRepository
	metrics *metrics.Metrics
	today   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	ledger := flatfile.NewSlotRepository(flatfile.MustOpen(filepath.Join(dir, "doctor_schedules.xlsx")))
	export := flatfile.NewExportRepository(flatfile.MustOpen(filepath.Join(dir, "appointments_export.xlsx")))

	today := time.Now()
	grid, err := seed.Slots(seed.DefaultConfig(), today)
	require.NoError(t, err)
	require.NoError(t, ledger.ReplaceAll(context.Background(), grid))

	m := metrics.New("test")
	return &fixture{
		svc:     NewService(ledger, export, m, nil),
		ledger:  ledger,
		export:  export,
		metrics: m,
		today:   today,
	}
}

func (f *fixture) tomorrow() string {
	return f.today.AddDate(0, 0, 1).Format("2006-01-02")
}

func countBooked(t *testing.T, ledger repository.SlotRepository) (total, booked int) {
	t.Helper()
	slots, err := ledger.List(context.Background())
	require.NoError(t, err)
	for _, s := range slots {
		if s.Booked {
			booked++
		}
	}
	return len(slots), booked
}

func TestBookTomorrowMorning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := &model.Patient{PatientID: "P011"}

	res, err := f.svc.Book(ctx, patient, &model.BookingRequest{
		Doctor: "Dr. Rao", Date: f.tomorrow(), Time: "09:00", Duration: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", res.Doctor)
	assert.Equal(t, "Main Clinic", res.Location)
	assert.Equal(t, 30*time.Minute, res.End.Sub(res.Start))
	assert.Equal(t, f.tomorrow()+"T09:00:00", res.Start.Format("2006-01-02T15:04:05"))

	total, booked := countBooked(t, f.ledger)
	assert.Equal(t, 336, total)
	assert.Equal(t, 1, booked)

	exported, found, err := f.export.List(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, exported, 1)
	assert.Equal(t, &model.Slot{
		Doctor: "Dr. Rao", Location: "Main Clinic",
		Start: f.tomorrow() + "T09:00:00", End: f.tomorrow() + "T09:30:00",
		Booked: true, PatientID: "P011",
	}, exported[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsTotal.WithLabelValues("Dr. Rao", metrics.OutcomeBooked)))
}

func TestBookSameSlotTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := &model.BookingRequest{Doctor: "Dr. Iyer", Date: f.tomorrow(), Time: "10:30", Duration: 30}

	_, err := f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, req)
	require.NoError(t, err)
	before, err := f.ledger.List(ctx)
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, &model.Patient{PatientID: "P002"}, req)
	assert.True(t, apperrors.IsSlotUnavailable(err))

	after, err := f.ledger.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBookDurationDoesNotAffectSelection(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Book(context.Background(), &model.Patient{PatientID: "P001"}, &model.BookingRequest{
		Doctor: "Dr. Mehta", Date: f.tomorrow(), Time: "16:30", Duration: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, res.End.Sub(res.Start))
	assert.Equal(t, 60, res.Duration)

	_, booked := countBooked(t, f.ledger)
	assert.Equal(t, 1, booked)
}

func TestBookOffGridOrUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []*model.BookingRequest{
		{Doctor: "Dr. Rao", Date: f.tomorrow(), Time: "09:05", Duration: 30},
		{Doctor: "Dr. Shyam", Date: f.tomorrow(), Time: "09:00", Duration: 30},
		{Doctor: "Dr. Rao", Date: f.today.AddDate(0, 0, 30).Format("2006-01-02"), Time: "09:00", Duration: 30},
		{Doctor: "dr. rao", Date: f.tomorrow(), Time: "09:00", Duration: 30},
	}
	for _, req := range cases {
		_, err := f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, req)
		assert.True(t, apperrors.IsSlotUnavailable(err), "%+v", req)
	}

	total, booked := countBooked(t, f.ledger)
	assert.Equal(t, 336, total)
	assert.Zero(t, booked)
	_, found, err := f.export.List(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBookParseErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, &model.BookingRequest{Doctor: "Dr. Rao", Date: "not a date", Time: "09:00"})
	assert.True(t, apperrors.IsParse(err))

	_, err = f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, &model.BookingRequest{Doctor: "Dr. Rao", Date: f.tomorrow(), Time: ""})
	assert.True(t, apperrors.IsParse(err))

	// a date in the time field is not read as midnight
	_, err = f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, &model.BookingRequest{Doctor: "Dr. Rao", Date: f.tomorrow(), Time: f.tomorrow()})
	assert.True(t, apperrors.IsParse(err))

	_, booked := countBooked(t, f.ledger)
	assert.Zero(t, booked)
}

func TestExportAccumulatesBookedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, clock := range []string{"09:00", "9:30 AM", "2:00pm", "1000", "1430"} {
		_, err := f.svc.Book(ctx, &model.Patient{PatientID: "P001"}, &model.BookingRequest{
			Doctor: "Dr. Rao", Date: f.tomorrow(), Time: clock, Duration: 30,
		})
		require.NoError(t, err, clock)
	}

	booked, found, err := f.svc.ListBooked(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, booked, 5)
	assert.Equal(t, f.tomorrow()+"T10:00:00", booked[2].Start)
	assert.Equal(t, f.tomorrow()+"T14:30:00", booked[4].Start)

	free, err := f.svc.ListSlots(ctx, model.SlotFilter{Doctor: "Dr. Rao", FreeOnly: true})
	require.NoError(t, err)
	assert.Len(t, free, 7*16-5)
}

type failingExport struct{ repository.ExportRepository }

func (failingExport) ReplaceAll(ctx context.Context, slots []*model.Slot) error {
	return apperrors.Storage("write", "appointments_export.xlsx", errors.New("read-only"))
}

func TestExportFailureLeavesLedgerCommitted(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.ledger, failingExport{f.export}, nil, nil)

	_, err := svc.Book(context.Background(), &model.Patient{PatientID: "P001"}, &model.BookingRequest{
		Doctor: "Dr. Rao", Date: f.tomorrow(), Time: "09:00", Duration: 30,
	})
	assert.True(t, apperrors.IsStorage(err))

	_, booked := countBooked(t, f.ledger)
	assert.Equal(t, 1, booked)
}

func TestFilterSlots(t *testing.T) {
	ledger := []*model.Slot{
		{Doctor: "A", Booked: true},
		{Doctor: "A"},
		{Doctor: "B", Booked: true},
	}
	assert.Len(t, filterSlots(ledger, model.SlotFilter{}), 3)
	assert.Len(t, filterSlots(ledger, model.SlotFilter{Doctor: "A"}), 2)
	assert.Len(t, filterSlots(ledger, model.SlotFilter{BookedOnly: true}), 2)
	assert.Len(t, filterSlots(ledger, model.SlotFilter{Doctor: "A", FreeOnly: true}), 1)
}
