package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
)

const profileColumns = `user_id, username, gender, region, is_pro, pro_expires_at, pending_orders, created_at, updated_at`

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Get(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// GetOrCreate inserts a blank profile when none exists. The insert and the
// read share one transaction so concurrent first contacts see the same row.
func (r *ProfileRepo) GetOrCreate(ctx context.Context, userID int64, username string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	var out model.Profile
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO profiles (user_id, username, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`, userID, username); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		row := tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
		p, err := scanProfile(row)
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Profile{}, err
	}
	return out, nil
}

func (r *ProfileRepo) Put(ctx context.Context, p model.Profile) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	pending := p.PendingOrders
	if pending == nil {
		pending = []string{}
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = updatedAt
	}

	const query = `
INSERT INTO profiles (
	user_id,
	username,
	gender,
	region,
	is_pro,
	pro_expires_at,
	pending_orders,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id) DO UPDATE SET
	username = EXCLUDED.username,
	gender = EXCLUDED.gender,
	region = EXCLUDED.region,
	is_pro = EXCLUDED.is_pro,
	pro_expires_at = EXCLUDED.pro_expires_at,
	pending_orders = EXCLUDED.pending_orders,
	updated_at = EXCLUDED.updated_at
`

	if _, err := r.pool.Exec(ctx, query,
		p.UserID,
		p.Username,
		string(p.Gender),
		p.Region,
		p.Entitlement.Active,
		p.Entitlement.ExpiresAt,
		pending,
		createdAt.UTC(),
		updatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) ListWithPendingOrders(ctx context.Context, afterUserID int64, limit int) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE cardinality(pending_orders) > 0 AND user_id > $1
ORDER BY user_id
LIMIT $2
`, afterUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles with pending orders: %w", err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending profiles: %w", err)
	}
	return out, nil
}

func (r *ProfileRepo) FindByPendingOrder(ctx context.Context, orderID string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE pending_orders @> ARRAY[$1]::text[]
LIMIT 1
`, orderID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("find profile by order: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p       model.Profile
		gender  string
		expires *time.Time
		pending []string
	)
	if err := row.Scan(
		&p.UserID,
		&p.Username,
		&gender,
		&p.Region,
		&p.Entitlement.Active,
		&expires,
		&pending,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Profile{}, err
	}

	p.Gender, _ = enums.ParseGender(gender)
	if expires != nil {
		exp := expires.UTC()
		p.Entitlement.ExpiresAt = &exp
	}
	if pending == nil {
		pending = []string{}
	}
	p.PendingOrders = pending
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
