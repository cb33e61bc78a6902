package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iyhunko/inventory-service/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	conf := &config.Config{MetricsServer: config.Server{Port: "9090"}}
	ProductsCreated.Inc()
	BusinessRuleViolations.WithLabelValues(RulePriceChange).Inc()

	server := NewServer(conf)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	assert.Equal(t, ":9090", server.Addr)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "products_created_total")
	assert.Contains(t, w.Body.String(), `product_business_rule_violations_total{rule="price_change"}`)
}
