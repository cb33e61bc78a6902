package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business rules reported by BusinessRuleViolations.
const (
	RulePriceChange = "price_change"
	RuleDeletion    = "deletion"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsUpdated is a Prometheus counter for tracking the total number of products updated.
	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_updated_total",
		Help: "The total number of products updated",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// BusinessRuleViolations counts mutations rejected by a product business rule.
	BusinessRuleViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_business_rule_violations_total",
		Help: "The total number of product mutations rejected by a business rule",
	}, []string{"rule"})

	// OutboxEvents counts outbox events by their final delivery status.
	OutboxEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_total",
		Help: "The total number of outbox events handled by the outbox worker",
	}, []string{"status"})
)
