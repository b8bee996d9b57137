package labs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthrec/ehr/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Catalog ===========

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepoPG(pool *pgxpool.Pool) CatalogRepository { return &catalogRepoPG{pool: pool} }

const testCols = `id, name, description, cost, created_at`

func scanTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Cost, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *catalogRepoPG) Create(ctx context.Context, t *LabTest) error {
	t.ID = uuid.New()
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_tests (id, name, description, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		t.ID, t.Name, t.Description, t.Cost).Scan(&t.CreatedAt)
}

func (r *catalogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return scanTest(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+testCols+` FROM lab_tests WHERE id = $1`, id))
}

func (r *catalogRepoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_tests SET name = $2, description = $3, cost = $4
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Cost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (r *catalogRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM lab_tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (r *catalogRepoPG) List(ctx context.Context, limit, offset int) ([]*LabTest, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM lab_tests`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+testCols+` FROM lab_tests ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []*LabTest
	for rows.Next() {
		var t LabTest
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Cost, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		tests = append(tests, &t)
	}
	return tests, total, rows.Err()
}

// =========== Assignments ===========

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

const assignmentCols = `id, test_id, record_id, patient_id, doctor_id, status, result, created_at, result_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.TestID, &a.RecordID, &a.PatientID, &a.DoctorID,
		&a.Status, &a.Result, &a.CreatedAt, &a.ResultAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	a.Status = StatusAssigned
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO lab_assignments (id, test_id, record_id, patient_id, doctor_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.TestID, a.RecordID, a.PatientID, a.DoctorID, a.Status).Scan(&a.CreatedAt)
}

func (r *assignmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return scanAssignment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM lab_assignments WHERE id = $1`, id))
}

func (r *assignmentRepoPG) SetResult(ctx context.Context, id uuid.UUID, result string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_assignments
		SET status = $2, result = $3, result_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, StatusCompleted, result, StatusAssigned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrResultRecorded
	}
	return nil
}

func (r *assignmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_assignments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+assignmentCols+` FROM lab_assignments
		 WHERE patient_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assignments, err := collectAssignments(rows)
	return assignments, total, err
}

func (r *assignmentRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Assignment, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+assignmentCols+` FROM lab_assignments
		 WHERE record_id = $1
		 ORDER BY created_at DESC`,
		recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows pgx.Rows) ([]*Assignment, error) {
	var assignments []*Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.TestID, &a.RecordID, &a.PatientID, &a.DoctorID,
			&a.Status, &a.Result, &a.CreatedAt, &a.ResultAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}
