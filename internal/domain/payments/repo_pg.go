package payments

import (
	"context"

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

const settlementCols = `ref, charge_id, patient_id, amount, created_at`

func (r *repoPG) Insert(ctx context.Context, s *Settlement) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO settlements (ref, charge_id, patient_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		s.Ref, s.ChargeID, s.PatientID, s.Amount).Scan(&s.CreatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Settlement, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM settlements WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+settlementCols+` FROM settlements
		 WHERE patient_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		var s Settlement
		if err := rows.Scan(&s.Ref, &s.ChargeID, &s.PatientID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		settlements = append(settlements, &s)
	}
	return settlements, total, rows.Err()
}
