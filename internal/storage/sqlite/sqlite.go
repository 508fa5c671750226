// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface for deployments that want splits to survive a
// restart. The service layer makes no durability assumptions either way.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitpay/splitpay/internal/models"
	"github.com/splitpay/splitpay/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts a new split with its participants.
func (s *SQLiteStore) Put(ctx context.Context, split *models.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM splits WHERE token = ?", split.Token).Scan(&existing)
	if err == nil {
		return storage.ErrDuplicateToken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check token index: %w", err)
	}

	if err := insertSplit(ctx, tx, split); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a split by internal id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*models.Split, error) {
	return s.getWhere(ctx, "id = ?", id)
}

// GetByToken retrieves a split by share token.
func (s *SQLiteStore) GetByToken(ctx context.Context, token string) (*models.Split, error) {
	return s.getWhere(ctx, "token = ?", token)
}

// Update replaces a stored split and its participant rows.
func (s *SQLiteStore) Update(ctx context.Context, split *models.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM splits WHERE id = ?", split.ID)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := insertSplit(ctx, tx, split); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// All returns every stored split.
func (s *SQLiteStore) All(ctx context.Context) ([]*models.Split, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM splits")
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan split id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	out := make([]*models.Split, 0, len(ids))
	for _, id := range ids {
		split, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, split)
	}
	return out, nil
}

// Remove deletes a split; participant rows cascade.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM splits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete split: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func insertSplit(ctx context.Context, tx *sql.Tx, split *models.Split) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO splits (
			id, token, name, description, total_amount, participant_target,
			amount_per_person, creator_address, creator_chain,
			receive_token_address, receive_token_symbol, receive_token_decimals,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		split.ID, split.Token, split.Name, split.Description,
		split.TotalAmount.String(), split.ParticipantTarget,
		split.AmountPerPerson.String(), split.CreatorAddress, split.CreatorChain,
		split.ReceiveToken.Address, split.ReceiveToken.Symbol, split.ReceiveToken.Decimals,
		string(split.Status), split.CreatedAt.Unix(), split.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for i := range split.Participants {
		p := &split.Participants[i]
		var paidAt *int64
		if p.PaidAt != nil {
			ts := p.PaidAt.Unix()
			paidAt = &ts
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO participants (split_id, position, address, chain, amount, paid, paid_at, tx_reference)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			split.ID, i, p.Address, p.Chain, p.Amount.String(), boolToInt(p.Paid), paidAt, p.TxReference,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) getWhere(ctx context.Context, where string, arg any) (*models.Split, error) {
	split := &models.Split{}
	var (
		totalAmount, perPerson string
		status                 string
		createdAt, updatedAt   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, token, name, description, total_amount, participant_target,
			amount_per_person, creator_address, creator_chain,
			receive_token_address, receive_token_symbol, receive_token_decimals,
			status, created_at, updated_at
		 FROM splits WHERE `+where,
		arg,
	).Scan(
		&split.ID, &split.Token, &split.Name, &split.Description,
		&totalAmount, &split.ParticipantTarget, &perPerson,
		&split.CreatorAddress, &split.CreatorChain,
		&split.ReceiveToken.Address, &split.ReceiveToken.Symbol, &split.ReceiveToken.Decimals,
		&status, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	if split.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
		return nil, fmt.Errorf("failed to parse total amount: %w", err)
	}
	if split.AmountPerPerson, err = decimal.NewFromString(perPerson); err != nil {
		return nil, fmt.Errorf("failed to parse per-person amount: %w", err)
	}
	split.Status = models.SplitStatus(status)
	split.CreatedAt = time.Unix(createdAt, 0).UTC()
	split.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT address, chain, amount, paid, paid_at, tx_reference
		 FROM participants WHERE split_id = ? ORDER BY position`,
		split.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      models.Participant
			amount string
			paid   int
			paidAt sql.NullInt64
		)
		if err := rows.Scan(&p.Address, &p.Chain, &amount, &paid, &paidAt, &p.TxReference); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse participant amount: %w", err)
		}
		p.Paid = paid != 0
		if paidAt.Valid {
			t := time.Unix(paidAt.Int64, 0).UTC()
			p.PaidAt = &t
		}
		split.Participants = append(split.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return split, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
