package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fioprotocol/fio-provisioner/internal/provisioning"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrAccountNotFound = errors.New("account not found in ledger")

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store records provisioning outcomes. Private keys are never written.
type Store struct {
	db DBTX
}

var _ provisioning.Recorder = (*Store)(nil)

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

const insertProvisioned = `
INSERT INTO provisioned_accounts
    (id, account_name, creator, owner_public_key, active_public_key, transaction_id, attempts)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (s *Store) RecordProvisioned(ctx context.Context, creator string, result *provisioning.Result) error {
	txID := ""
	if result.Receipt != nil {
		txID = result.Receipt.TransactionID
	}

	_, err := s.db.Exec(ctx, insertProvisioned,
		newID(),
		result.AccountName,
		creator,
		result.OwnerKeys.PublicKey,
		result.ActiveKeys.PublicKey,
		txID,
		result.Attempts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert provisioned account: %w", err)
	}

	slog.Debug("Recorded provisioned account", "account_name", result.AccountName)
	return nil
}

const insertOrphan = `
INSERT INTO orphaned_accounts
    (id, account_name, creator, attempt, stage, error, transaction_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))`

func (s *Store) RecordOrphan(ctx context.Context, orphan provisioning.OrphanedAccount) error {
	_, err := s.db.Exec(ctx, insertOrphan,
		newID(),
		orphan.AccountName,
		orphan.Creator,
		orphan.Attempt,
		orphan.Stage.String(),
		orphan.Error,
		orphan.TransactionID,
		pgtype.Timestamptz{Time: orphan.FailedAt, Valid: !orphan.FailedAt.IsZero()},
	)
	if err != nil {
		return fmt.Errorf("failed to insert orphaned account: %w", err)
	}

	slog.Debug("Recorded orphaned account", "account_name", orphan.AccountName, "stage", orphan.Stage)
	return nil
}

const selectProvisioned = `
SELECT id, account_name, creator, owner_public_key, active_public_key, transaction_id, attempts, created_at
FROM provisioned_accounts`

func (s *Store) GetProvisioned(ctx context.Context, accountName string) (*ProvisionedAccount, error) {
	row := s.db.QueryRow(ctx, selectProvisioned+" WHERE account_name = $1", accountName)

	acc, err := scanProvisioned(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListProvisioned returns one page of accounts, newest first, and the total count.
func (s *Store) ListProvisioned(ctx context.Context, limit, offset int) ([]ProvisionedAccount, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM provisioned_accounts").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	rows, err := s.db.Query(ctx, selectProvisioned+" ORDER BY created_at DESC, account_name LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	result := []ProvisionedAccount{}
	for rows.Next() {
		acc, err := scanProvisioned(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}
		result = append(result, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	return result, total, nil
}

const selectOrphans = `
SELECT id, account_name, creator, attempt, stage, error, transaction_id, created_at
FROM orphaned_accounts
ORDER BY created_at DESC, account_name
LIMIT $1 OFFSET $2`

// ListOrphans returns one page of orphaned accounts, newest first, and the total count.
func (s *Store) ListOrphans(ctx context.Context, limit, offset int) ([]OrphanedAccount, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM orphaned_accounts").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orphans: %w", err)
	}

	rows, err := s.db.Query(ctx, selectOrphans, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orphans: %w", err)
	}
	defer rows.Close()

	result := []OrphanedAccount{}
	for rows.Next() {
		var (
			o  OrphanedAccount
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &o.AccountName, &o.Creator, &o.Attempt, &o.Stage, &o.Error, &o.TransactionID, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan orphan: %w", err)
		}
		o.ID = uuidToString(id)
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list orphans: %w", err)
	}
	return result, total, nil
}

func scanProvisioned(row pgx.Row) (*ProvisionedAccount, error) {
	var (
		acc ProvisionedAccount
		id  pgtype.UUID
	)
	err := row.Scan(&id, &acc.AccountName, &acc.Creator, &acc.OwnerPublicKey, &acc.ActivePublicKey,
		&acc.TransactionID, &acc.Attempts, &acc.CreatedAt)
	if err != nil {
		return nil, err
	}
	acc.ID = uuidToString(id)
	return &acc, nil
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func uuidToString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
