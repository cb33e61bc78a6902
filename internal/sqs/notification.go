package sqs

import (
	"context"
	"log/slog"
)

// LogNotification writes the notification to the default logger.
// Products that are still listed but have no stock are reported as warnings.
func LogNotification(_ context.Context, msg ProductMessage) error {
	attrs := []any{
		slog.String("action", msg.Action),
		slog.String("product_id", msg.ProductID),
		slog.String("name", msg.Name),
		slog.String("price", msg.Price.StringFixed(2)),
		slog.Int("stock", msg.Stock),
		slog.Bool("is_active", msg.IsActive),
	}

	if msg.Action != ActionDeleted && !msg.IsActive {
		slog.Warn("Product is out of stock", attrs...)
		return nil
	}
	slog.Info("Received product notification", attrs...)
	return nil
}
