package repository

import (
	"context"

	"github.com/jwalitptl/clinic-booking/internal/model"
)

// All repository interfaces in one file. Every implementation rewrites its
// whole backing file on mutation; callers must not assume any locking.
type (
	// PatientRepository handles the patient directory
	PatientRepository interface {
		Exists(ctx context.Context) (bool, error)
		List(ctx context.Context) ([]*model.Patient, error)
		ReplaceAll(ctx context.Context, patients []*model.Patient) error
	}

	// SlotRepository handles the doctor schedule ledger
	SlotRepository interface {
		Exists(ctx context.Context) (bool, error)
		List(ctx context.Context) ([]*model.Slot, error)
		ReplaceAll(ctx context.Context, slots []*model.Slot) error
	}

	// ExportRepository handles the booked-only view of the ledger. List
	// reports found=false when no export has been written yet.
	ExportRepository interface {
		List(ctx context.Context) (slots []*model.Slot, found bool, err error)
		ReplaceAll(ctx context.Context, slots []*model.Slot) error
	}

	// CommunicationRepository handles the append-only communications log.
	CommunicationRepository interface {
		List(ctx context.Context) (entries []*model.CommunicationEntry, found bool, err error)
		Append(ctx context.Context, entry *model.CommunicationEntry) error
	}
)
