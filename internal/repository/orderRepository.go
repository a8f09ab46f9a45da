package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
	"github.com/navanithaadhav/Herbal-Hot/internal/logger"
)

type OrderRepo interface {
	AddOrder(ctx context.Context, order *domain.Order) error
	GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error
	SavePaid(ctx context.Context, o *domain.Order) error
	SaveShipped(ctx context.Context, o *domain.Order) error
	SaveDelivered(ctx context.Context, o *domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

const orderColumns = `
	id, user_id, user_email,
	currency, items_minor, tax_minor, shipping_minor, total_minor,
	payment_method, gateway_order_id,
	is_paid, paid_at, payment_id, payment_status, payment_update_time, payer_email,
	is_shipped, shipped_at, is_delivered, delivered_at,
	ship_address, ship_city, ship_postal_code, ship_country,
	created_at`

func (p *OrderRepository) AddOrder(ctx context.Context, o *domain.Order) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO shop.orders
			(id, user_id, user_email,
			 currency, items_minor, tax_minor, shipping_minor, total_minor,
			 payment_method, gateway_order_id,
			 ship_address, ship_city, ship_postal_code, ship_country,
			 created_at)
		 VALUES
			($1, $2, $3,
			 $4, $5, $6, $7, $8,
			 $9, $10,
			 $11, $12, $13, $14,
			 $15)`,
		o.ID, o.UserID, o.UserEmail,
		o.Currency, o.ItemsMinor, o.TaxMinor, o.ShippingMinor, o.TotalMinor,
		o.PaymentMethod, o.GatewayOrderID,
		o.Shipping.Address, o.Shipping.City, o.Shipping.PostalCode, o.Shipping.Country,
		o.CreatedAt,
	)
	if err != nil {
		logger.Warn("insert order failed", "id", o.ID, "err", err)
		return err
	}

	// Items are many-to-one; batch them.
	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(
				`INSERT INTO shop.order_items
					(order_id, product_id, name, price_minor, qty, image)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				o.ID, it.ProductID, it.Name, it.PriceMinor, it.Qty, it.Image,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil
	return nil
}

func (p *OrderRepository) GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM shop.orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	items, err := p.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// SetGatewayOrderID records the remote payment reference after the gateway
// call that follows order insertion. Best-effort: a failed gateway call
// simply never produces one.
func (p *OrderRepository) SetGatewayOrderID(ctx context.Context, id uuid.UUID, gatewayOrderID string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE shop.orders SET gateway_order_id = $2 WHERE id = $1`, id, gatewayOrderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// SavePaid persists the paid transition. The is_paid = FALSE guard makes the
// update conditional, so two racing confirmations cannot both win.
func (p *OrderRepository) SavePaid(ctx context.Context, o *domain.Order) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE shop.orders
		 SET is_paid = TRUE, paid_at = $2,
		     payment_id = $3, payment_status = $4, payment_update_time = $5, payer_email = $6
		 WHERE id = $1 AND is_paid = FALSE`,
		o.ID, o.PaidAt,
		o.PaymentResult.PaymentID, o.PaymentResult.Status,
		o.PaymentResult.UpdateTime, o.PaymentResult.Email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		paid, _, _, err := p.lifecycleFlags(ctx, o.ID)
		if err != nil {
			return err
		}
		return paidConflict(paid)
	}
	return nil
}

func (p *OrderRepository) SaveShipped(ctx context.Context, o *domain.Order) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE shop.orders
		 SET is_shipped = TRUE, shipped_at = $2
		 WHERE id = $1 AND is_paid = TRUE AND is_shipped = FALSE`,
		o.ID, o.ShippedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		paid, shipped, _, err := p.lifecycleFlags(ctx, o.ID)
		if err != nil {
			return err
		}
		return shipConflict(paid, shipped)
	}
	return nil
}

func (p *OrderRepository) SaveDelivered(ctx context.Context, o *domain.Order) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE shop.orders
		 SET is_delivered = TRUE, delivered_at = $2
		 WHERE id = $1 AND is_shipped = TRUE AND is_delivered = FALSE`,
		o.ID, o.DeliveredAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		_, shipped, delivered, err := p.lifecycleFlags(ctx, o.ID)
		if err != nil {
			return err
		}
		return deliverConflict(shipped, delivered)
	}
	return nil
}

func (p *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM shop.orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return p.collect(ctx, rows)
}

func (p *OrderRepository) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM shop.orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return p.collect(ctx, rows)
}

// lifecycleFlags re-reads the row after a zero-row conditional update, so
// the surfaced error names the precondition that actually failed.
func (p *OrderRepository) lifecycleFlags(ctx context.Context, id uuid.UUID) (paid, shipped, delivered bool, err error) {
	err = p.pool.QueryRow(ctx,
		`SELECT is_paid, is_shipped, is_delivered FROM shop.orders WHERE id = $1`, id).
		Scan(&paid, &shipped, &delivered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, false, false, domain.ErrOrderNotFound
		}
		return false, false, false, err
	}
	return paid, shipped, delivered, nil
}

// The guards mirror the UPDATE predicates: given that a conditional update
// matched nothing and the row exists, exactly one precondition is to blame.

func paidConflict(paid bool) error {
	if paid {
		return domain.ErrAlreadyPaid
	}
	// is_paid = FALSE is the only predicate besides the id; unreachable
	// unless the row was deleted between the two statements.
	return domain.ErrOrderNotFound
}

func shipConflict(paid, shipped bool) error {
	if !paid {
		return domain.ErrNotPaid
	}
	if shipped {
		return domain.ErrAlreadyShipped
	}
	return domain.ErrOrderNotFound
}

func deliverConflict(shipped, delivered bool) error {
	if !shipped {
		return domain.ErrNotShipped
	}
	if delivered {
		return domain.ErrAlreadyDelivered
	}
	return domain.ErrOrderNotFound
}

func (p *OrderRepository) collect(ctx context.Context, rows pgx.Rows) ([]domain.Order, error) {
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := p.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (p *OrderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT product_id, name, price_minor, qty, image
		 FROM shop.order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceMinor, &it.Qty, &it.Image); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserEmail,
		&o.Currency, &o.ItemsMinor, &o.TaxMinor, &o.ShippingMinor, &o.TotalMinor,
		&o.PaymentMethod, &o.GatewayOrderID,
		&o.IsPaid, &o.PaidAt, &o.PaymentResult.PaymentID, &o.PaymentResult.Status,
		&o.PaymentResult.UpdateTime, &o.PaymentResult.Email,
		&o.IsShipped, &o.ShippedAt, &o.IsDelivered, &o.DeliveredAt,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
