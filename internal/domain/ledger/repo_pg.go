package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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

const walletCols = `id, owner_kind, owner_id, balance, created_at, updated_at`

func scanWallet(row pgx.Row) (*Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.OwnerKind, &w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *repoPG) GetOrCreate(ctx context.Context, owner Owner) (*Wallet, error) {
	// The no-op DO UPDATE makes the conflicting row visible to RETURNING,
	// so concurrent callers all get the same wallet without a second query.
	return scanWallet(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO wallets (owner_kind, owner_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (owner_kind, owner_id) DO UPDATE SET owner_kind = EXCLUDED.owner_kind
		RETURNING `+walletCols,
		owner.Kind, owner.ID))
}

func (r *repoPG) GetByOwner(ctx context.Context, owner Owner) (*Wallet, error) {
	return scanWallet(r.conn(ctx).QueryRow(ctx,
		`SELECT `+walletCols+` FROM wallets WHERE owner_kind = $1 AND owner_id = $2`,
		owner.Kind, owner.ID))
}

func (r *repoPG) Credit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	return scanWallet(r.conn(ctx).QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance + $3, updated_at = NOW()
		WHERE owner_kind = $1 AND owner_id = $2
		RETURNING `+walletCols,
		owner.Kind, owner.ID, amount))
}

func (r *repoPG) Debit(ctx context.Context, owner Owner, amount decimal.Decimal) (*Wallet, error) {
	w, err := scanWallet(r.conn(ctx).QueryRow(ctx, `
		UPDATE wallets
		SET balance = balance - $3, updated_at = NOW()
		WHERE owner_kind = $1 AND owner_id = $2 AND balance >= $3
		RETURNING `+walletCols,
		owner.Kind, owner.ID, amount))
	if errors.Is(err, ErrWalletNotFound) {
		// The guard rejects both a missing wallet and a short balance.
		// Distinguish them so callers can report the right failure.
		if _, getErr := r.GetByOwner(ctx, owner); getErr == nil {
			return nil, ErrInsufficientFunds
		}
		return nil, ErrWalletNotFound
	}
	return w, err
}
