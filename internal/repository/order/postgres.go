package order

import (
	"context"
	"errors"

	"coastalhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `
id::text, order_number, customer_name, customer_email, customer_phone, customer_address,
lines, total_cents, status, payment_method, COALESCE(gateway_session_id, ''), version, created_at, updated_at
`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Insert(ctx context.Context, o *domain.Order) error {
	const q = `
INSERT INTO orders (id, order_number, customer_name, customer_email, customer_phone, customer_address,
	lines, total_cents, status, payment_method, gateway_session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
RETURNING version, created_at, updated_at
`
	return r.pool.QueryRow(ctx, q,
		o.ID,
		o.OrderNumber,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.Address,
		o.Lines,
		o.TotalCents,
		string(o.Status),
		string(o.PaymentMethod),
		o.GatewaySessionID,
	).Scan(&o.Version, &o.CreatedAt, &o.UpdatedAt)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.fetchOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.fetchOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_session_id = $1`, sessionID)
}

func (r *postgresRepo) QueryByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_email = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// AdvanceStatus moves an order forward in the lifecycle. Backward and
// out-of-terminal transitions are rejected with ErrStatusRegression
// while the row stays locked, so concurrent advances cannot interleave.
func (r *postgresRepo) AdvanceStatus(ctx context.Context, id string, next domain.Status) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	cur, _ := domain.ParseStatus(current)
	if !cur.CanAdvanceTo(next) {
		return nil, domain.ErrStatusRegression
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(next), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// MarkPaidBySession advances the pending order for a gateway session
// to received. A session whose order is already past pending is a
// duplicate notification; the current order is returned unchanged.
func (r *postgresRepo) MarkPaidBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = 'received'
WHERE gateway_session_id = $1 AND status = 'pending'
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q, sessionID).Scan(&id)
	if err == nil {
		return r.GetByID(ctx, id)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return r.GetBySessionID(ctx, sessionID)
}

// DiscardPendingBySession deletes the pending order for a canceled
// gateway session. Orders past pending are never discarded.
func (r *postgresRepo) DiscardPendingBySession(ctx context.Context, sessionID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM orders
WHERE gateway_session_id = $1 AND status = 'pending'
`, sessionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchOne(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, q, args...)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status, method string
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.Address,
		&o.Lines,
		&o.TotalCents,
		&status,
		&method,
		&o.GatewaySessionID,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Status, _ = domain.ParseStatus(status)
	o.PaymentMethod = domain.PaymentMethod(method)
	return &o, nil
}
