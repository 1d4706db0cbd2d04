package flatfile

import (
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type communicationRepository struct {
	table Table
}

func NewCommunicationRepository(table Table) repository.CommunicationRepository {
	return &communicationRepository{table: table}
}

func (r *communicationRepository) List(ctx context.Context) ([]*model.CommunicationEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	header, rows, err := r.table.Read()
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, readErr(r.table, err)
	}
	recs := records(header, rows)
	entries := make([]*model.CommunicationEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, &model.CommunicationEntry{
			Timestamp: rec["ts"],
			Email:     rec["email"],
			Phone:     rec["phone"],
			Subject:   rec["subject"],
			Body:      rec["body"],
		})
	}
	return entries, true, nil
}

// Append reads the whole log, adds entry and rewrites the file.
func (r *communicationRepository) Append(ctx context.Context, entry *model.CommunicationEntry) error {
	existing, _, err := r.List(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(existing)+1)
	for _, e := range append(existing, entry) {
		rows = append(rows, []string{e.Timestamp, e.Email, e.Phone, e.Subject, e.Body})
	}
	if err := r.table.Write(model.CommunicationColumns, rows); err != nil {
		return writeErr(r.table, err)
	}
	return nil
}
