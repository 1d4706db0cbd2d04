package flatfile

import (
	"context"
	stderrors "errors"
	"io/fs"
	"strconv"
	"strings"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

// slotTable backs both the ledger and the booked export; they share a schema.
type slotTable struct {
	table Table
}

func (s *slotTable) read(ctx context.Context) ([]*model.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, rows, err := s.table.Read()
	if err != nil {
		return nil, err
	}
	recs := records(header, rows)
	slots := make([]*model.Slot, 0, len(recs))
	for _, rec := range recs {
		slots = append(slots, &model.Slot{
			Doctor:    rec["doctor"],
			Location:  rec["location"],
			Start:     rec["start"],
			End:       rec["end"],
			Booked:    parseBool(rec["booked"]),
			PatientID: rec["patient_id"],
		})
	}
	return slots, nil
}

func (s *slotTable) write(ctx context.Context, slots []*model.Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, 0, len(slots))
	for _, sl := range slots {
		rows = append(rows, []string{
			sl.Doctor, sl.Location, sl.Start, sl.End,
			strconv.FormatBool(sl.Booked), sl.PatientID,
		})
	}
	if err := s.table.Write(model.SlotColumns, rows); err != nil {
		return writeErr(s.table, err)
	}
	return nil
}

// parseBool accepts true/false in any case plus 1/0.
func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

type slotRepository struct {
	slotTable
}

func NewSlotRepository(table Table) repository.SlotRepository {
	return &slotRepository{slotTable{table: table}}
}

func (r *slotRepository) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := r.table.Exists()
	if err != nil {
		return false, readErr(r.table, err)
	}
	return ok, nil
}

func (r *slotRepository) List(ctx context.Context) ([]*model.Slot, error) {
	slots, err := r.read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, readErr(r.table, err)
	}
	return slots, nil
}

func (r *slotRepository) ReplaceAll(ctx context.Context, slots []*model.Slot) error {
	return r.write(ctx, slots)
}

type exportRepository struct {
	slotTable
}

func NewExportRepository(table Table) repository.ExportRepository {
	return &exportRepository{slotTable{table: table}}
}

func (r *exportRepository) List(ctx context.Context) ([]*model.Slot, bool, error) {
	slots, err := r.read(ctx)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, readErr(r.table, err)
	}
	return slots, true, nil
}

func (r *exportRepository) ReplaceAll(ctx context.Context, slots []*model.Slot) error {
	return r.write(ctx, slots)
}
