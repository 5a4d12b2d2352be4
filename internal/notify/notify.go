// Package notify sends customer-facing notices about orders.
package notify

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// OrderNotice is what a customer is told after checkout.
type OrderNotice struct {
	OrderID    int64
	Email      string
	Name       string
	GrandTotal decimal.Decimal
	StatusURL  string
}

type Notifier interface {
	OrderPlaced(ctx context.Context, n OrderNotice) error
}

// LogNotifier writes the confirmation mail to the log instead of sending it.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) OrderPlaced(ctx context.Context, n OrderNotice) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Order confirmation email",
		"to", n.Email,
		"name", n.Name,
		"subject", "DatKomp order confirmation",
		"order_id", n.OrderID,
		"grand_total", n.GrandTotal.StringFixed(2),
		"link", n.StatusURL,
	)
	return nil
}
