package flatfile

import (
	"context"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

type patientRepository struct {
	table Table
}

func NewPatientRepository(table Table) repository.PatientRepository {
	return &patientRepository{table: table}
}

func (r *patientRepository) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := r.table.Exists()
	if err != nil {
		return false, readErr(r.table, err)
	}
	return ok, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, rows, err := r.table.Read()
	if err != nil {
		return nil, readErr(r.table, err)
	}
	recs := records(header, rows)
	patients := make([]*model.Patient, 0, len(recs))
	for _, rec := range recs {
		patients = append(patients, &model.Patient{
			PatientID:         rec["patient_id"],
			Name:              rec["name"],
			DOB:               rec["dob"],
			Email:             rec["email"],
			Phone:             rec["phone"],
			InsuranceCarrier:  rec["insurance_carrier"],
			InsuranceMemberID: rec["insurance_member_id"],
			InsuranceGroup:    rec["insurance_group"],
		})
	}
	return patients, nil
}

func (r *patientRepository) ReplaceAll(ctx context.Context, patients []*model.Patient) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []string{
			p.PatientID, p.Name, p.DOB, p.Email, p.Phone,
			p.InsuranceCarrier, p.InsuranceMemberID, p.InsuranceGroup,
		})
	}
	if err := r.table.Write(model.PatientColumns, rows); err != nil {
		return writeErr(r.table, err)
	}
	return nil
}
