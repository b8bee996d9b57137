package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/healthrec/ehr/internal/domain/billing"
	"github.com/healthrec/ehr/internal/domain/ledger"
	"github.com/healthrec/ehr/internal/platform/db"
)

// TxRunner executes fn inside a transaction scope carried on the context.
// Everything fn does through context-aware repositories commits or rolls
// back together.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// SerializableRunner returns a TxRunner backed by a serializable database
// transaction.
func SerializableRunner(pool *pgxpool.Pool) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.RunInTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	}
}

const payRetries = 3

type Service struct {
	runner      TxRunner
	wallets     *ledger.Service
	charges     billing.Repository
	settlements Repository
	log         zerolog.Logger
}

func NewService(runner TxRunner, wallets *ledger.Service, charges billing.Repository, settlements Repository, log zerolog.Logger) *Service {
	return &Service{
		runner:      runner,
		wallets:     wallets,
		charges:     charges,
		settlements: settlements,
		log:         log,
	}
}

// PayBill settles a pending charge from the patient's wallet. The debit, the
// status flip, the collection-wallet credit and the settlement log row commit
// as one transaction; any failure leaves no trace. Serialization conflicts
// are retried a few times before surfacing as db.ErrTxConflict.
func (s *Service) PayBill(ctx context.Context, patientID, chargeID uuid.UUID, amount decimal.Decimal) (*Receipt, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}

	var receipt *Receipt
	var err error
	for attempt := 0; attempt < payRetries; attempt++ {
		if attempt > 0 {
			s.log.Warn().
				Str("charge_id", chargeID.String()).
				Int("attempt", attempt+1).
				Msg("retrying payment after transaction conflict")
			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		receipt, err = s.payOnce(ctx, patientID, chargeID, amount)
		if !errors.Is(err, db.ErrTxConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("charge_id", receipt.ChargeID.String()).
		Str("settlement_ref", receipt.SettlementRef.String()).
		Str("amount", receipt.Amount.String()).
		Msg("charge settled")
	return receipt, nil
}

func (s *Service) payOnce(ctx context.Context, patientID, chargeID uuid.UUID, amount decimal.Decimal) (*Receipt, error) {
	var receipt *Receipt
	err := s.runner(ctx, func(ctx context.Context) error {
		ch, err := s.charges.GetByIDForUpdate(ctx, chargeID)
		if err != nil {
			return err
		}
		// A charge belonging to someone else looks absent to this patient.
		if ch.PatientID != patientID {
			return billing.ErrNotFound
		}
		if ch.Status != billing.StatusPending {
			return billing.ErrAlreadySettled
		}
		if !ch.Amount.Equal(amount) {
			return ErrAmountMismatch
		}

		payer := ledger.PatientOwner(patientID)
		if _, err := s.wallets.EnsureWallet(ctx, payer); err != nil {
			return err
		}
		if _, err := s.wallets.Debit(ctx, payer, amount); err != nil {
			return err
		}

		ref := uuid.New()
		if err := s.charges.MarkCompleted(ctx, chargeID, ref); err != nil {
			return err
		}

		if _, err := s.wallets.EnsureWallet(ctx, ledger.CollectionOwner); err != nil {
			return err
		}
		if _, err := s.wallets.Credit(ctx, ledger.CollectionOwner, amount); err != nil {
			return err
		}

		settlement := &Settlement{Ref: ref, ChargeID: chargeID, PatientID: patientID, Amount: amount}
		if err := s.settlements.Insert(ctx, settlement); err != nil {
			return fmt.Errorf("record settlement: %w", err)
		}

		receipt = &Receipt{
			ChargeID:      chargeID,
			Amount:        amount,
			SettlementRef: ref,
			PaidAt:        settlement.CreatedAt,
		}
		if receipt.PaidAt.IsZero() {
			receipt.PaidAt = time.Now()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// TopUp adds funds to the patient's wallet, provisioning it on first use.
func (s *Service) TopUp(ctx context.Context, patientID uuid.UUID, amount decimal.Decimal) (*ledger.Wallet, error) {
	owner := ledger.PatientOwner(patientID)
	if _, err := s.wallets.EnsureWallet(ctx, owner); err != nil {
		return nil, err
	}
	return s.wallets.Credit(ctx, owner, amount)
}

// WalletBalance returns the patient's wallet, provisioning it on first use.
func (s *Service) WalletBalance(ctx context.Context, patientID uuid.UUID) (*ledger.Wallet, error) {
	return s.wallets.EnsureWallet(ctx, ledger.PatientOwner(patientID))
}

// CollectionBalance returns the collection wallet that accumulates settled
// payments.
func (s *Service) CollectionBalance(ctx context.Context) (*ledger.Wallet, error) {
	return s.wallets.EnsureWallet(ctx, ledger.CollectionOwner)
}

// Receipts lists the patient's settlements, newest first.
func (s *Service) Receipts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Settlement, int, error) {
	return s.settlements.ListByPatient(ctx, patientID, limit, offset)
}

func backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * 25 * time.Millisecond
	jitter := time.Duration(rand.Intn(25)) * time.Millisecond
	return base + jitter
}
