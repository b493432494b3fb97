package postgres

import (
	"context"
	"database/sql"
	"fmt"

	signalDomain "trade-signals/internal/domain/signal"
)

// DeviceRepo 提供推播位址註冊的 Postgres 存取。
// 每個 userId 最多一個位址（後寫覆蓋）；閘道回報失效的位址先標記，
// 待下一次註冊寫入時懶清除。
type DeviceRepo struct {
	db *sql.DB
}

// NewDeviceRepo 建立裝置 repository。
func NewDeviceRepo(db *sql.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// Upsert 寫入或覆蓋使用者的推播位址，並順手清掉已標記失效的註冊。
func (r *DeviceRepo) Upsert(ctx context.Context, reg signalDomain.DeviceRegistration) error {
	const prune = `DELETE FROM device_registrations WHERE invalid_at IS NOT NULL;`
	if _, err := r.db.ExecContext(ctx, prune); err != nil {
		return fmt.Errorf("prune invalid devices: %w", err)
	}

	const q = `
INSERT INTO device_registrations (user_id, push_address, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id)
DO UPDATE SET push_address = EXCLUDED.push_address, invalid_at = NULL, updated_at = NOW();
`
	_, err := r.db.ExecContext(ctx, q, reg.UserID, reg.PushAddress)
	return err
}

// ListActive 列出所有尚未標記失效、位址非空的註冊。
func (r *DeviceRepo) ListActive(ctx context.Context) ([]signalDomain.DeviceRegistration, error) {
	const q = `
SELECT user_id, push_address, updated_at
FROM device_registrations
WHERE invalid_at IS NULL AND push_address <> '';
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []signalDomain.DeviceRegistration
	for rows.Next() {
		var reg signalDomain.DeviceRegistration
		if err := rows.Scan(&reg.UserID, &reg.PushAddress, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// MarkInvalid 標記閘道回報永久失效的位址。
func (r *DeviceRepo) MarkInvalid(ctx context.Context, pushAddress string) error {
	const q = `UPDATE device_registrations SET invalid_at = NOW() WHERE push_address = $1;`
	_, err := r.db.ExecContext(ctx, q, pushAddress)
	return err
}
