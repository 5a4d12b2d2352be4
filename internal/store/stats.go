package store

import (
	"context"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalProducts  int
	TotalOrders    int
	TotalUsers     int
	UnreadMessages int
	Revenue        decimal.Decimal
	OrdersByStatus []StatusCount
	TopProducts    []ProductSales
}

type StatusCount struct {
	Status string
	Count  int
}

type ProductSales struct {
	ProductName string
	Quantity    int
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{Revenue: decimal.Zero}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM product`, &stats.TotalProducts},
		{`SELECT COUNT(*) FROM orders`, &stats.TotalOrders},
		{`SELECT COUNT(*) FROM app_user`, &stats.TotalUsers},
	}
	for _, c := range counts {
		if err := s.queryRow(ctx, s.DB, c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	if err := s.queryRow(ctx, s.DB, `SELECT COUNT(*) FROM contact_message WHERE is_read = ?`, false).Scan(&stats.UnreadMessages); err != nil {
		return nil, err
	}

	// Orders by status, including statuses with no orders
	rows, err := s.query(ctx, s.DB, `SELECT s.name, COUNT(o.id) FROM order_status s
		LEFT JOIN orders o ON o.order_status_id = s.id
		GROUP BY s.id, s.name ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus = append(stats.OrdersByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Revenue is summed here rather than in SQL: sqlite keeps money as TEXT
	totalRows, err := s.query(ctx, s.DB, `SELECT grand_total FROM orders`)
	if err != nil {
		return nil, err
	}
	defer totalRows.Close()
	for totalRows.Next() {
		var d decimal.Decimal
		if err := totalRows.Scan(&d); err != nil {
			return nil, err
		}
		stats.Revenue = stats.Revenue.Add(d)
	}
	if err := totalRows.Err(); err != nil {
		return nil, err
	}

	topRows, err := s.query(ctx, s.DB, `SELECT product_name, SUM(qty) AS sold FROM order_item
		GROUP BY product_name ORDER BY sold DESC, product_name LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var ps ProductSales
		if err := topRows.Scan(&ps.ProductName, &ps.Quantity); err != nil {
			return nil, err
		}
		stats.TopProducts = append(stats.TopProducts, ps)
	}
	return stats, topRows.Err()
}
