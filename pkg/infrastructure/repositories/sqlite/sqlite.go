/*
Package sqlite provides a SQLite-backed TransferRepository.

KEY TABLES:

	transfers:          one row per submitted transfer (header, audit fields)
	transfer_lines:     the instructions of a transfer, in build order
	transfer_shortages: the shortages recorded when the transfer was built

A transfer and its lines are written in one database transaction. The
idempotency key is UNIQUE, so a resubmitted instruction set is never stored
twice; SaveTransfer returns the stored transfer with
entities.ErrDuplicateSubmission instead.

Quantities are stored as decimal strings and times as RFC 3339 text.

USAGE:

	store, err := sqlite.New("./data/transfers.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/domain/repositories"
)

// Store implements repositories.TransferRepository using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for numbering and audit timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

var _ repositories.TransferRepository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		transfer_no TEXT NOT NULL UNIQUE,
		requisition_id TEXT NOT NULL,
		requisition_no TEXT NOT NULL,
		from_warehouse_id TEXT NOT NULL,
		to_warehouse_id TEXT NOT NULL,
		to_bin_id TEXT NOT NULL,
		idempotency_key TEXT UNIQUE,
		created_by TEXT,
		created_at TEXT NOT NULL,
		updated_by TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_requisition
		ON transfers(requisition_id);

	CREATE TABLE IF NOT EXISTS transfer_lines (
		transfer_id TEXT NOT NULL REFERENCES transfers(id),
		line_no INTEGER NOT NULL,
		sku TEXT NOT NULL,
		item_id TEXT,
		item_name TEXT,
		from_warehouse_id TEXT NOT NULL,
		to_warehouse_id TEXT NOT NULL,
		from_bin_id TEXT NOT NULL,
		from_bin_name TEXT,
		to_bin_id TEXT NOT NULL,
		qty TEXT NOT NULL,
		supplier_id TEXT,
		bin_on_hand TEXT NOT NULL,
		bin_available TEXT NOT NULL,
		requested_qty TEXT NOT NULL,
		requested_qty_original TEXT NOT NULL,
		received_qty TEXT NOT NULL,
		PRIMARY KEY (transfer_id, line_no)
	);

	CREATE TABLE IF NOT EXISTS transfer_shortages (
		transfer_id TEXT NOT NULL REFERENCES transfers(id),
		line_no INTEGER NOT NULL,
		sku TEXT NOT NULL,
		item_name TEXT,
		needed TEXT NOT NULL,
		available_at_submit TEXT NOT NULL,
		PRIMARY KEY (transfer_id, line_no)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveTransfer numbers and stores a transfer with its lines atomically.
func (s *Store) SaveTransfer(ctx context.Context, doc *entities.TransferDocument) (*entities.TransferDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.IdempotencyKey != "" {
		existing, err := s.findByKey(ctx, doc.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != "" {
			stored, err := s.load(ctx, existing)
			if err != nil {
				return nil, err
			}
			return stored, entities.ErrDuplicateSubmission
		}
	}

	saved := *doc
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	now := s.now().UTC()
	saved.CreatedAt = now
	saved.UpdatedAt = now

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	prefix := entities.TransferNoPrefix(now)
	var count int
	if err := sqlTx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transfers WHERE transfer_no LIKE ?", prefix+"%",
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to number transfer: %w", err)
	}
	saved.TransferNo = entities.FormatTransferNo(now, count+1)

	if err := insertTransfer(ctx, sqlTx, &saved); err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %v", entities.ErrDuplicateSubmission, err)
		}
		return nil, err
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	return &saved, nil
}

// GetTransfer loads a transfer with its lines and shortages.
func (s *Store) GetTransfer(ctx context.Context, id string) (*entities.TransferDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(ctx, id)
}

// TransferredRequisitionIDs lists requisitions with at least one transfer.
func (s *Store) TransferredRequisitionIDs(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT requisition_id FROM transfers")
	if err != nil {
		return nil, fmt.Errorf("failed to query transferred requisitions: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan requisition id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransfer(ctx context.Context, db execer, doc *entities.TransferDocument) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transfers
		(id, transfer_no, requisition_id, requisition_no, from_warehouse_id, to_warehouse_id,
		 to_bin_id, idempotency_key, created_by, created_at, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.TransferNo,
		doc.RequisitionID,
		doc.RequisitionNo,
		string(doc.Route.FromWarehouseID),
		string(doc.Route.ToWarehouseID),
		string(doc.Route.ToBinID),
		nullString(doc.IdempotencyKey),
		doc.CreatedBy,
		doc.CreatedAt.Format(time.RFC3339Nano),
		doc.UpdatedBy,
		doc.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return err
		}
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	for i, in := range doc.Instructions {
		_, err := db.ExecContext(ctx, `
			INSERT INTO transfer_lines
			(transfer_id, line_no, sku, item_id, item_name, from_warehouse_id, to_warehouse_id,
			 from_bin_id, from_bin_name, to_bin_id, qty, supplier_id, bin_on_hand, bin_available,
			 requested_qty, requested_qty_original, received_qty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, i+1, in.SKU, in.ItemID, in.ItemName,
			string(in.FromWarehouseID), string(in.ToWarehouseID),
			string(in.FromBinID), in.FromBinName, string(in.ToBinID),
			in.Qty.String(), in.SupplierID, in.BinOnHand.String(), in.BinAvailable.String(),
			in.RequestedQty.String(), in.RequestedQtyOriginal.String(), in.ReceivedQty.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer line %d: %w", i+1, err)
		}
	}

	for i, sh := range doc.Shortages {
		_, err := db.ExecContext(ctx, `
			INSERT INTO transfer_shortages
			(transfer_id, line_no, sku, item_name, needed, available_at_submit)
			VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, i+1, sh.SKU, sh.ItemName, sh.Needed.String(), sh.AvailableAtSubmit.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer shortage %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) findByKey(ctx context.Context, key string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM transfers WHERE idempotency_key = ?", key,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	return id, nil
}

func (s *Store) load(ctx context.Context, id string) (*entities.TransferDocument, error) {
	var (
		doc                      entities.TransferDocument
		from, to, toBin          string
		key, createdBy, updateBy sql.NullString
		createdAt, updatedAt     string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, transfer_no, requisition_id, requisition_no, from_warehouse_id, to_warehouse_id,
		       to_bin_id, idempotency_key, created_by, created_at, updated_by, updated_at
		FROM transfers WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.TransferNo, &doc.RequisitionID, &doc.RequisitionNo, &from, &to,
		&toBin, &key, &createdBy, &createdAt, &updateBy, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transfer %s: %w", id, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer %s: %w", id, err)
	}

	doc.Route = entities.Route{
		FromWarehouseID: entities.WarehouseID(from),
		ToWarehouseID:   entities.WarehouseID(to),
		ToBinID:         entities.BinID(toBin),
	}
	doc.IdempotencyKey = key.String
	doc.CreatedBy = createdBy.String
	doc.UpdatedBy = updateBy.String
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if doc.Instructions, err = s.loadLines(ctx, id); err != nil {
		return nil, err
	}
	if doc.Shortages, err = s.loadShortages(ctx, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) loadLines(ctx context.Context, id string) ([]entities.TransferInstruction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sku, item_id, item_name, from_warehouse_id, to_warehouse_id, from_bin_id,
		       from_bin_name, to_bin_id, qty, supplier_id, bin_on_hand, bin_available,
		       requested_qty, requested_qty_original, received_qty
		FROM transfer_lines WHERE transfer_id = ? ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer lines: %w", err)
	}
	defer rows.Close()

	lines := []entities.TransferInstruction{}
	for rows.Next() {
		var (
			in                                      entities.TransferInstruction
			from, to, fromBin, toBin                string
			itemID, itemName, binName, supplier     sql.NullString
			qty, onHand, avail, req, reqOrig, recvd string
		)
		if err := rows.Scan(&in.SKU, &itemID, &itemName, &from, &to, &fromBin, &binName, &toBin,
			&qty, &supplier, &onHand, &avail, &req, &reqOrig, &recvd); err != nil {
			return nil, fmt.Errorf("failed to scan transfer line: %w", err)
		}
		in.ItemID = itemID.String
		in.ItemName = itemName.String
		in.FromWarehouseID = entities.WarehouseID(from)
		in.ToWarehouseID = entities.WarehouseID(to)
		in.FromBinID = entities.BinID(fromBin)
		in.FromBinName = binName.String
		in.ToBinID = entities.BinID(toBin)
		in.SupplierID = supplier.String

		parsed, err := parseQuantities(qty, onHand, avail, req, reqOrig, recvd)
		if err != nil {
			return nil, err
		}
		in.Qty, in.BinOnHand, in.BinAvailable = parsed[0], parsed[1], parsed[2]
		in.RequestedQty, in.RequestedQtyOriginal, in.ReceivedQty = parsed[3], parsed[4], parsed[5]
		lines = append(lines, in)
	}
	return lines, rows.Err()
}

func (s *Store) loadShortages(ctx context.Context, id string) ([]entities.LineShortage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sku, item_name, needed, available_at_submit
		FROM transfer_shortages WHERE transfer_id = ? ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer shortages: %w", err)
	}
	defer rows.Close()

	shortages := []entities.LineShortage{}
	for rows.Next() {
		var (
			sh               entities.LineShortage
			itemName         sql.NullString
			needed, atSubmit string
		)
		if err := rows.Scan(&sh.SKU, &itemName, &needed, &atSubmit); err != nil {
			return nil, fmt.Errorf("failed to scan transfer shortage: %w", err)
		}
		sh.ItemName = itemName.String

		parsed, err := parseQuantities(needed, atSubmit)
		if err != nil {
			return nil, err
		}
		sh.Needed, sh.AvailableAtSubmit = parsed[0], parsed[1]
		shortages = append(shortages, sh)
	}
	return shortages, rows.Err()
}

func parseQuantities(values ...string) ([]entities.Quantity, error) {
	out := make([]entities.Quantity, len(values))
	for i, v := range values {
		q, err := entities.ParseQuantity(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity %q: %w", v, err)
		}
		out[i] = q
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
