package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrBadTransition     = errors.New("status transition not allowed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyAssigned   = errors.New("order already assigned to another delivery agent")
	ErrNotReady          = errors.New("order is not ready for delivery")
	ErrNotAssigned       = errors.New("order is not assigned to this agent")
)

// Flat per-delivery payout used for agent earnings stats.
const deliveryEarningsRate = 20

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetForCustomer(ctx context.Context, id, customerID string) (*Order, error)
	ListByShop(ctx context.Context, shopID string, status Status) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	UpdateStatusByShop(ctx context.Context, id, shopID string, to Status) error
	CancelByCustomer(ctx context.Context, id, customerID string) error
	ListAvailable(ctx context.Context) ([]Order, error)
	ListAssigned(ctx context.Context, agentID string) ([]Order, error)
	ListCompleted(ctx context.Context, agentID string) ([]Order, error)
	Accept(ctx context.Context, id, agentID string) error
	MarkDelivered(ctx context.Context, id, agentID string) error
	StatsByShop(ctx context.Context, shopID string) (ShopStats, error)
	AgentStats(ctx context.Context, agentID string) (AgentStats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, order_number, customer_id, customer_name, customer_phone, customer_email,
	shop_id, total_amount::text, delivery_address, delivery_instructions,
	status, payment_status, payment_method, delivery_agent_id, delivered_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Number, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.ShopID, &o.TotalAmount, &o.DeliveryAddress, &o.DeliveryInstructions,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.DeliveryAgentID, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create reserves stock, assigns the order number and persists the order
// with its item snapshots in one transaction. A failed stock guard rolls the
// whole thing back.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range items {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND shop_id = $3 AND stock >= $2
		`, it.ProductID, it.Quantity, o.ShopID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: product %s", ErrInsufficientStock, it.ProductID)
		}
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return err
	}
	o.Number = fmt.Sprintf("ORD-%04d", seq)

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, customer_id, customer_name, customer_phone, customer_email,
			shop_id, total_amount, delivery_address, delivery_instructions,
			status, payment_status, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	`, o.ID, o.Number, o.CustomerID, o.CustomerName, o.CustomerPhone, o.CustomerEmail,
		o.ShopID, o.TotalAmount, o.DeliveryAddress, o.DeliveryInstructions,
		o.Status, o.PaymentStatus, o.PaymentMethod); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, price, quantity, unit, image)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, it.ID, o.ID, it.ProductID, it.Name, it.Price, it.Quantity, it.Unit, it.Image); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) getOne(ctx context.Context, query string, args ...any) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, ErrNotFound
	}
	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
}

func (r *PGRepo) GetForCustomer(ctx context.Context, id, customerID string) (*Order, error) {
	return r.getOne(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 AND customer_id=$2`, id, customerID)
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
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

	if len(out) == 0 {
		return out, nil
	}
	grouped, err := r.itemsFor(ctx, lo.Map(out, func(o Order, _ int) string { return o.ID }))
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = grouped[out[i].ID]
	}
	return out, nil
}

func (r *PGRepo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, price::text, quantity, unit, image
		FROM order_items WHERE order_id = ANY($1)
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity, &it.Unit, &it.Image); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lo.GroupBy(items, func(it Item) string { return it.OrderID }), nil
}

func (r *PGRepo) ListByShop(ctx context.Context, shopID string, status Status) ([]Order, error) {
	if status == "" {
		return r.list(ctx, `
			SELECT `+orderCols+` FROM orders WHERE shop_id=$1 ORDER BY created_at DESC
		`, shopID)
	}
	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders WHERE shop_id=$1 AND status=$2 ORDER BY created_at DESC
	`, shopID, status)
}

func (r *PGRepo) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC
	`, customerID)
}

// ListAvailable returns dispatched orders no agent has claimed yet, oldest
// first so the longest-waiting order is picked up first.
func (r *PGRepo) ListAvailable(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE delivery_agent_id IS NULL AND status=$1 ORDER BY created_at ASC
	`, StatusDispatched)
}

func (r *PGRepo) ListAssigned(ctx context.Context, agentID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE delivery_agent_id=$1 AND status=$2 ORDER BY created_at DESC
	`, agentID, StatusDispatched)
}

func (r *PGRepo) ListCompleted(ctx context.Context, agentID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE delivery_agent_id=$1 AND status=$2 ORDER BY delivered_at DESC
	`, agentID, StatusDelivered)
}

// setStatus moves an order along the transition table inside a transaction.
// extraScope narrows which caller may touch the row, allowed restricts the
// source states beyond the table itself, and cancellation restores reserved
// stock.
func (r *PGRepo) setStatus(ctx context.Context, id string, to Status, extraScope string, scopeArg any, allowed func(Status) bool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Status
	err = tx.QueryRow(ctx, `
		SELECT status FROM orders WHERE id=$1 AND `+extraScope+`=$2 FOR UPDATE
	`, id, scopeArg).Scan(&cur)
	if err != nil {
		return ErrNotFound
	}
	if !cur.CanTransition(to) || (allowed != nil && !allowed(cur)) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, cur, to)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1
	`, id, to); err != nil {
		return err
	}

	if to == StatusCancelled {
		if _, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) UpdateStatusByShop(ctx context.Context, id, shopID string, to Status) error {
	return r.setStatus(ctx, id, to, "shop_id", shopID, nil)
}

// CancelByCustomer lets the customer back out while the order is still
// pending or confirmed; once the shop has packed it, only the shop side can
// cancel.
func (r *PGRepo) CancelByCustomer(ctx context.Context, id, customerID string) error {
	return r.setStatus(ctx, id, StatusCancelled, "customer_id", customerID, func(cur Status) bool {
		return cur == StatusPending || cur == StatusConfirmed
	})
}

// Accept is a single conditional update so two agents racing for the same
// order cannot both win.
func (r *PGRepo) Accept(ctx context.Context, id, agentID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET delivery_agent_id=$2, updated_at=NOW()
		WHERE id=$1 AND delivery_agent_id IS NULL AND status=$3
	`, id, agentID, StatusDispatched)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.classifyAcceptFailure(ctx, id)
}

func (r *PGRepo) classifyAcceptFailure(ctx context.Context, id string) error {
	var agent *string
	var st Status
	err := r.db.QueryRow(ctx, `SELECT delivery_agent_id, status FROM orders WHERE id=$1`, id).Scan(&agent, &st)
	if err != nil {
		return ErrNotFound
	}
	if agent != nil {
		return ErrAlreadyAssigned
	}
	return ErrNotReady
}

// MarkDelivered finalizes the order and bumps the agent's delivery counters
// in the same transaction. The status guard makes a repeat call fail instead
// of counting the delivery twice.
func (r *PGRepo) MarkDelivered(ctx context.Context, id, agentID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status=$3, payment_status=$4, delivered_at=NOW(), updated_at=NOW()
		WHERE id=$1 AND delivery_agent_id=$2 AND status=$5
	`, id, agentID, StatusDelivered, PaymentPaid, StatusDispatched)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var agent *string
		var st Status
		if err := tx.QueryRow(ctx, `SELECT delivery_agent_id, status FROM orders WHERE id=$1`, id).Scan(&agent, &st); err != nil {
			return ErrNotFound
		}
		if agent == nil || *agent != agentID {
			return ErrNotAssigned
		}
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, st, StatusDelivered)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE delivery_agents
		SET total_deliveries = total_deliveries + 1,
		    completed_deliveries = completed_deliveries + 1,
		    updated_at = NOW()
		WHERE user_id = $1
	`, agentID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) StatsByShop(ctx context.Context, shopID string) (ShopStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount),0)::text
		FROM orders WHERE shop_id=$1 GROUP BY status
	`, shopID)
	if err != nil {
		return ShopStats{}, err
	}
	defer rows.Close()

	st := ShopStats{Stats: []StatusCount{}}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count, &sc.TotalAmount); err != nil {
			return ShopStats{}, err
		}
		st.Stats = append(st.Stats, sc)
	}
	if err := rows.Err(); err != nil {
		return ShopStats{}, err
	}

	st.TotalOrders = lo.SumBy(st.Stats, func(sc StatusCount) int { return sc.Count })
	for _, sc := range st.Stats {
		switch sc.Status {
		case StatusPending, StatusConfirmed, StatusPacked:
			st.PendingOrders += sc.Count
		}
	}
	return st, nil
}

func (r *PGRepo) AgentStats(ctx context.Context, agentID string) (AgentStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var st AgentStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE delivery_agent_id=$1 AND status='delivered'),
			(SELECT COUNT(*) FROM orders WHERE delivery_agent_id=$1 AND status='dispatched'),
			(SELECT COUNT(*) FROM orders WHERE delivery_agent_id=$1 AND status='delivered'
				AND delivered_at >= date_trunc('day', NOW()))
	`, agentID).Scan(&st.TotalDeliveries, &st.PendingDeliveries, &st.TodayDeliveries)
	if err != nil {
		return AgentStats{}, err
	}
	st.TotalEarnings = st.TotalDeliveries * deliveryEarningsRate
	st.TodayEarnings = st.TodayDeliveries * deliveryEarningsRate
	return st, nil
}
