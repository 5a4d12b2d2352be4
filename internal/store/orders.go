package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/shopspring/decimal"
)

// LineInput is one cart line handed to PlaceOrder.
type LineInput struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// PlaceOrderInput carries everything an order is created from.
type PlaceOrderInput struct {
	UserID         *int64 // nil for guests
	Customer       models.Customer
	DeliveryTypeID int64
	Lines          []LineInput
}

// Totals computes line totals, the items total and the grand total for the given delivery price.
func Totals(lines []LineInput, deliveryPrice decimal.Decimal) (lineTotals []decimal.Decimal, itemsTotal, grandTotal decimal.Decimal) {
	lineTotals = make([]decimal.Decimal, len(lines))
	itemsTotal = decimal.Zero
	for i, l := range lines {
		lineTotals[i] = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		itemsTotal = itemsTotal.Add(lineTotals[i])
	}
	return lineTotals, itemsTotal, itemsTotal.Add(deliveryPrice)
}

// PlaceOrder writes the order header, its line items and the stock
// decrements in one transaction and returns the new order id.
//
// The stock decrement is unconditional: concurrent orders can push
// stock_qty below zero.
func (s *Store) PlaceOrder(ctx context.Context, in PlaceOrderInput) (int64, error) {
	if len(in.Lines) == 0 {
		return 0, ErrEmptyCart
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return 0, fmt.Errorf("invalid quantity %d for product %d", l.Quantity, l.ProductID)
		}
	}

	var orderID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var deliveryPrice decimal.Decimal
		err := s.queryRow(ctx, tx, `SELECT price FROM delivery_type WHERE id = ? AND is_active = ?`,
			in.DeliveryTypeID, true).Scan(&deliveryPrice)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidDeliveryType
		}
		if err != nil {
			return storageErr("read delivery price", err)
		}

		lineTotals, itemsTotal, grandTotal := Totals(in.Lines, deliveryPrice)

		var userID sql.NullInt64
		if in.UserID != nil {
			userID = sql.NullInt64{Int64: *in.UserID, Valid: true}
		}
		c := in.Customer
		orderID, err = s.insertID(ctx, tx, `INSERT INTO orders
			(created_at_utc, user_id, first_name, last_name, address_line, phone, email,
			 delivery_type_id, order_status_id, items_total, delivery_price, grand_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			time.Now().UTC(), userID, c.FirstName, c.LastName, c.AddressLine, c.Phone, c.Email,
			in.DeliveryTypeID, models.StatusNew, itemsTotal, deliveryPrice, grandTotal)
		if err != nil {
			return storageErr("insert order", err)
		}

		if s.onOrderHeader != nil {
			if err := s.onOrderHeader(tx, orderID); err != nil {
				return storageErr("after order header", err)
			}
		}

		for i, l := range in.Lines {
			if _, err := s.exec(ctx, tx, `INSERT INTO order_item (order_id, product_id, product_name, qty, unit_price, line_total)
				VALUES (?, ?, ?, ?, ?, ?)`, orderID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, lineTotals[i]); err != nil {
				return storageErr(fmt.Sprintf("insert line item for product %d", l.ProductID), err)
			}
			if _, err := s.exec(ctx, tx, `UPDATE product SET stock_qty = stock_qty - ? WHERE id = ?`, l.Quantity, l.ProductID); err != nil {
				return storageErr(fmt.Sprintf("decrement stock for product %d", l.ProductID), err)
			}
		}
		return nil
	})
	if err != nil {
		var se *StorageError
		if !errors.As(err, &se) && !errors.Is(err, ErrInvalidDeliveryType) {
			// begin/commit failures from withTx
			err = storageErr("place order", err)
		}
		return 0, err
	}
	return orderID, nil
}

const orderColumns = `o.id, o.created_at_utc, o.user_id, o.first_name, o.last_name, o.address_line, o.phone, o.email,
	o.delivery_type_id, dt.name, o.items_total, o.delivery_price, o.grand_total, s.id, s.name`

const orderFrom = ` FROM orders o
	JOIN order_status s ON s.id = o.order_status_id
	JOIN delivery_type dt ON dt.id = o.delivery_type_id`

func scanOrder(row interface{ Scan(...any) error }) (models.Order, error) {
	var o models.Order
	var userID sql.NullInt64
	err := row.Scan(&o.ID, &o.CreatedAt, &userID, &o.Customer.FirstName, &o.Customer.LastName,
		&o.Customer.AddressLine, &o.Customer.Phone, &o.Customer.Email,
		&o.DeliveryTypeID, &o.DeliveryTypeName, &o.ItemsTotal, &o.DeliveryPrice, &o.GrandTotal,
		&o.StatusID, &o.StatusName)
	if userID.Valid {
		o.UserID = &userID.Int64
	}
	return o, err
}

func (s *Store) scanOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.query(ctx, s.DB, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrder loads one order with its line items.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(s.queryRow(ctx, s.DB, `SELECT `+orderColumns+orderFrom+` WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	items, err := s.orderItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return &o, nil
}

// GetAllOrders lists orders newest first, without items.
func (s *Store) GetAllOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.scanOrders(ctx, `SELECT `+orderColumns+orderFrom+` ORDER BY o.created_at_utc DESC, o.id DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (s *Store) GetTotalOrdersCount(ctx context.Context) (int, error) {
	var count int
	if err := s.queryRow(ctx, s.DB, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetOrdersForUser lists one user's orders newest first, with items.
func (s *Store) GetOrdersForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.scanOrders(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.user_id = ? ORDER BY o.created_at_utc DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (s *Store) orderItems(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}
	rows, err := s.query(ctx, s.DB, `SELECT id, order_id, product_id, product_name, qty, unit_price, line_total
		FROM order_item WHERE order_id IN (`+placeholders(len(orderIDs))+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var it models.OrderItem
		var productID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.OrderID, &productID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		if productID.Valid {
			it.ProductID = &productID.Int64
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (s *Store) GetOrderStatuses(ctx context.Context) ([]models.OrderStatus, error) {
	rows, err := s.query(ctx, s.DB, `SELECT id, name FROM order_status ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.OrderStatus
	for rows.Next() {
		var st models.OrderStatus
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, err
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

// UpdateOrderStatus moves an order to statusID. Both must exist.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, statusID int64) error {
	var exists int
	err := s.queryRow(ctx, s.DB, `SELECT 1 FROM order_status WHERE id = ?`, statusID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order status %d: %w", statusID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, s.DB, `UPDATE orders SET order_status_id = ? WHERE id = ?`, statusID, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order %d status: %w", orderID, err)
	}
	return affectedOne(res)
}
