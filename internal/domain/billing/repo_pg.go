package billing

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const chargeCols = `id, patient_id, record_id, amount, status, settlement_ref, created_at, settled_at`

func scanCharge(row pgx.Row) (*Charge, error) {
	var ch Charge
	err := row.Scan(&ch.ID, &ch.PatientID, &ch.RecordID, &ch.Amount, &ch.Status,
		&ch.SettlementRef, &ch.CreatedAt, &ch.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (r *repoPG) Create(ctx context.Context, ch *Charge) error {
	ch.ID = uuid.New()
	ch.Status = StatusPending
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO charges (id, patient_id, record_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		ch.ID, ch.PatientID, ch.RecordID, ch.Amount, ch.Status).Scan(&ch.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Charge, error) {
	return scanCharge(r.conn(ctx).QueryRow(ctx,
		`SELECT `+chargeCols+` FROM charges WHERE id = $1`, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Charge, error) {
	return scanCharge(r.conn(ctx).QueryRow(ctx,
		`SELECT `+chargeCols+` FROM charges WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) ListPending(ctx context.Context, patientID uuid.UUID) ([]*Charge, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM charges
		 WHERE patient_id = $1 AND status = $2
		 ORDER BY created_at DESC`,
		patientID, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCharges(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Charge, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM charges WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM charges
		 WHERE patient_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	charges, err := collectCharges(rows)
	return charges, total, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Charge, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM charges`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM charges
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	charges, err := collectCharges(rows)
	return charges, total, err
}

func (r *repoPG) MarkCompleted(ctx context.Context, id uuid.UUID, settlementRef uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE charges
		SET status = $2, settlement_ref = $3, settled_at = NOW()
		WHERE id = $1 AND status = $4`,
		id, StatusCompleted, settlementRef, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// The charge is either absent or no longer pending.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrAlreadySettled
	}
	return nil
}

func collectCharges(rows pgx.Rows) ([]*Charge, error) {
	var charges []*Charge
	for rows.Next() {
		var ch Charge
		if err := rows.Scan(&ch.ID, &ch.PatientID, &ch.RecordID, &ch.Amount, &ch.Status,
			&ch.SettlementRef, &ch.CreatedAt, &ch.SettledAt); err != nil {
			return nil, err
		}
		charges = append(charges, &ch)
	}
	return charges, rows.Err()
}
