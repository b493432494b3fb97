package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	signalDomain "trade-signals/internal/domain/signal"
)

// SignalRepo 提供訊號紀錄的 Postgres 存取。
type SignalRepo struct {
	db *sql.DB
}

// NewSignalRepo 建立訊號 repository。
func NewSignalRepo(db *sql.DB) *SignalRepo {
	return &SignalRepo{db: db}
}

const signalColumns = `id, pair, direction, order_type, entry, stop_loss, target1, target2, target3, analysis_text, chart_image_ref, status, follower_count, created_at`

// Insert 寫入新訊號。
func (r *SignalRepo) Insert(ctx context.Context, s signalDomain.Signal) error {
	const q = `
INSERT INTO signals (id, pair, direction, order_type, entry, stop_loss, target1, target2, target3, analysis_text, chart_image_ref, status, follower_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.Pair,
		string(s.Direction),
		s.OrderType,
		s.Entry,
		s.StopLoss,
		s.Target1,
		s.Target2,
		s.Target3,
		nullIfEmpty(s.AnalysisText),
		nullIfEmpty(s.ChartImageRef),
		string(s.Status),
		s.FollowerCount,
		s.CreatedAt,
	)
	return err
}

// Get 讀取單一訊號；不存在時回傳 domain 的 ErrNotFound。
func (r *SignalRepo) Get(ctx context.Context, id string) (signalDomain.Signal, error) {
	q := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1;`
	row := r.db.QueryRowContext(ctx, q, id)
	s, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return signalDomain.Signal{}, signalDomain.ErrNotFound
	}
	return s, err
}

// UpdateStatus 更新狀態；影響零列視為 ErrNotFound。
func (r *SignalRepo) UpdateStatus(ctx context.Context, id string, status signalDomain.Status) error {
	const q = `UPDATE signals SET status = $2, updated_at = NOW() WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return signalDomain.ErrNotFound
	}
	return nil
}

// Delete 移除訊號；不存在的 id 不是錯誤。
func (r *SignalRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM signals WHERE id = $1;`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// List 列出訊號，onlyActive 時過濾終態，新的在前。
func (r *SignalRepo) List(ctx context.Context, onlyActive bool) ([]signalDomain.Signal, error) {
	q := `SELECT ` + signalColumns + ` FROM signals`
	if onlyActive {
		q += ` WHERE status NOT IN ('TP3', 'CLOSED', 'STOPPED')`
	}
	q += ` ORDER BY created_at DESC;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var out []signalDomain.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignal(row rowScanner) (signalDomain.Signal, error) {
	var s signalDomain.Signal
	var direction, status string
	var analysis, chart sql.NullString
	err := row.Scan(
		&s.ID,
		&s.Pair,
		&direction,
		&s.OrderType,
		&s.Entry,
		&s.StopLoss,
		&s.Target1,
		&s.Target2,
		&s.Target3,
		&analysis,
		&chart,
		&status,
		&s.FollowerCount,
		&s.CreatedAt,
	)
	if err != nil {
		return signalDomain.Signal{}, err
	}
	s.Direction = signalDomain.Direction(direction)
	s.Status = signalDomain.Status(status)
	s.AnalysisText = analysis.String
	s.ChartImageRef = chart.String
	return s, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
