package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/quantive/mrplan/pkg/domain/entities"
	"github.com/quantive/mrplan/pkg/domain/repositories"
)

// Source kinds as persisted; the tagged union flattens into one row.
const (
	sourceActivity = "activity"
	sourcePurchase = "purchase"
	sourceTransfer = "transfer"
	sourceLeadTime = "leadtime"
)

// AdjustmentRepository persists the adjustment ledger in SQLite. The table
// is insert-only; there are deliberately no UPDATE or DELETE statements.
type AdjustmentRepository struct {
	db *sql.DB
}

// Verify interface compliance
var _ repositories.AdjustmentRepository = (*AdjustmentRepository)(nil)

// NewAdjustmentRepository opens (and migrates) the ledger database
func NewAdjustmentRepository(dbPath string) (*AdjustmentRepository, error) {
	// busy_timeout avoids "database is locked" under the single writer
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(2 * time.Minute)
	db.SetMaxOpenConns(1)

	r := &AdjustmentRepository{db: db}
	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *AdjustmentRepository) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS adjustments(
  id               TEXT PRIMARY KEY,
  requirement_id   TEXT NOT NULL,
  inventory_id     TEXT NOT NULL,
  instant          INTEGER NOT NULL,
  change_qty       TEXT NOT NULL,
  adjustment_type  INTEGER NOT NULL,
  lot_number       TEXT,
  storage_area     TEXT,
  expired          INTEGER NOT NULL DEFAULT 0,
  source_kind      TEXT,
  source_ref       TEXT,
  source_at        INTEGER,
  source_scheduled INTEGER NOT NULL DEFAULT 0,
  source_reported  INTEGER NOT NULL DEFAULT 0,
  source_post_ns   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_adjustments_requirement ON adjustments(requirement_id, instant);
CREATE INDEX IF NOT EXISTS idx_adjustments_lot ON adjustments(inventory_id, lot_number, instant);
`
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying database
func (r *AdjustmentRepository) Close() error { return r.db.Close() }

// Append posts one adjustment to the ledger
func (r *AdjustmentRepository) Append(ctx context.Context, adj *entities.Adjustment) error {
	return r.insert(ctx, r.db, adj)
}

// AppendBatch posts restored adjustments atomically
func (r *AdjustmentRepository) AppendBatch(ctx context.Context, adjs []*entities.Adjustment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, adj := range adjs {
		if err := r.insert(ctx, tx, adj); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *AdjustmentRepository) insert(ctx context.Context, db execer, adj *entities.Adjustment) error {
	var lot, area sql.NullString
	if adj.Storage != nil {
		lot = sql.NullString{String: adj.Storage.LotNumber, Valid: true}
		area = sql.NullString{String: adj.Storage.StorageArea, Valid: true}
	}

	var kind, ref sql.NullString
	var at sql.NullInt64
	var scheduled, reported bool
	var postNS int64
	switch src := adj.Source.(type) {
	case entities.ActivitySupply:
		kind = sql.NullString{String: sourceActivity, Valid: true}
		ref = sql.NullString{String: src.ActivityRef, Valid: true}
		at = sql.NullInt64{Int64: src.FinishAt.UnixNano(), Valid: true}
		scheduled, reported = src.Scheduled, src.Reported
		postNS = int64(src.PostProcessing)
	case entities.PurchaseSupply:
		kind = sql.NullString{String: sourcePurchase, Valid: true}
		ref = sql.NullString{String: src.OrderRef, Valid: true}
		at = sql.NullInt64{Int64: src.AvailableAt.UnixNano(), Valid: true}
	case entities.TransferSupply:
		kind = sql.NullString{String: sourceTransfer, Valid: true}
		ref = sql.NullString{String: src.TransferRef, Valid: true}
		at = sql.NullInt64{Int64: src.ScheduledReceiveAt.UnixNano(), Valid: true}
	case entities.LeadTimeSupply:
		kind = sql.NullString{String: sourceLeadTime, Valid: true}
		ref = sql.NullString{String: src.InventoryID, Valid: true}
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO adjustments(id, requirement_id, inventory_id, instant, change_qty, adjustment_type,
  lot_number, storage_area, expired, source_kind, source_ref, source_at,
  source_scheduled, source_reported, source_post_ns)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		adj.ID.String(), adj.RequirementID, adj.InventoryID, adj.Instant.UnixNano(),
		adj.ChangeQty.String(), int(adj.Type), lot, area, adj.Expired,
		kind, ref, at, scheduled, reported, postNS)
	return err
}

const selectColumns = `id, requirement_id, inventory_id, instant, change_qty, adjustment_type,
  lot_number, storage_area, expired, source_kind, source_ref, source_at,
  source_scheduled, source_reported, source_post_ns`

// ForRequirement returns the adjustments pegged to a material requirement,
// instant ascending with rowid breaking ties deterministically
func (r *AdjustmentRepository) ForRequirement(ctx context.Context, requirementID string) ([]*entities.Adjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectColumns+` FROM adjustments
WHERE requirement_id = ? ORDER BY instant, rowid`, requirementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdjustments(rows)
}

// ForLot returns all adjustments posted against a lot, instant ascending
func (r *AdjustmentRepository) ForLot(ctx context.Context, inventoryID, lotNumber string) ([]*entities.Adjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+selectColumns+` FROM adjustments
WHERE inventory_id = ? AND lot_number = ? ORDER BY instant, rowid`, inventoryID, lotNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdjustments(rows)
}

// OnHand sums a lot's adjustments in Go so decimal precision survives the
// TEXT storage
func (r *AdjustmentRepository) OnHand(ctx context.Context, inventoryID, lotNumber string) (decimal.Decimal, error) {
	entries, err := r.ForLot(ctx, inventoryID, lotNumber)
	if err != nil {
		return decimal.Zero, err
	}
	onHand := decimal.Zero
	for _, adj := range entries {
		onHand = onHand.Add(adj.ChangeQty)
	}
	return onHand, nil
}

func scanAdjustments(rows *sql.Rows) ([]*entities.Adjustment, error) {
	var adjs []*entities.Adjustment
	for rows.Next() {
		var (
			id, requirementID, inventoryID, changeQty string
			instant, postNS                           int64
			adjType                                   int
			lot, area, kind, ref                      sql.NullString
			at                                        sql.NullInt64
			expired, scheduled, reported              bool
		)
		if err := rows.Scan(&id, &requirementID, &inventoryID, &instant, &changeQty, &adjType,
			&lot, &area, &expired, &kind, &ref, &at, &scheduled, &reported, &postNS); err != nil {
			return nil, err
		}

		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt adjustment id %q: %w", id, err)
		}
		qty, err := decimal.NewFromString(changeQty)
		if err != nil {
			return nil, fmt.Errorf("corrupt adjustment quantity %q: %w", changeQty, err)
		}

		adj := &entities.Adjustment{
			ID:            parsedID,
			RequirementID: requirementID,
			InventoryID:   inventoryID,
			Instant:       time.Unix(0, instant).UTC(),
			ChangeQty:     qty,
			Type:          entities.AdjustmentType(adjType),
			Expired:       expired,
		}
		if lot.Valid || area.Valid {
			adj.Storage = &entities.StorageRef{LotNumber: lot.String, StorageArea: area.String}
		}

		var sourceAt time.Time
		if at.Valid {
			sourceAt = time.Unix(0, at.Int64).UTC()
		}
		switch kind.String {
		case sourceActivity:
			adj.Source = entities.ActivitySupply{
				ActivityRef:    ref.String,
				Scheduled:      scheduled,
				Reported:       reported,
				FinishAt:       sourceAt,
				PostProcessing: time.Duration(postNS),
			}
		case sourcePurchase:
			adj.Source = entities.PurchaseSupply{OrderRef: ref.String, AvailableAt: sourceAt}
		case sourceTransfer:
			adj.Source = entities.TransferSupply{TransferRef: ref.String, ScheduledReceiveAt: sourceAt}
		case sourceLeadTime:
			adj.Source = entities.LeadTimeSupply{InventoryID: ref.String}
		}

		adjs = append(adjs, adj)
	}
	return adjs, rows.Err()
}
