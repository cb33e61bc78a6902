package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/metrics"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
	"github.com/iyhunko/inventory-service/internal/sqs"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the caller supplied fields of a new product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// ProductService applies the product business rules around storage operations.
// Every mutation runs in one transaction together with its outbox event.
type ProductService struct {
	products repository.ProductRepository
	tx       repository.Transactor
}

func NewProductService(products repository.ProductRepository, tx repository.Transactor) *ProductService {
	return &ProductService{
		products: products,
		tx:       tx,
	}
}

func (ps *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	product := model.NewProduct(input.Name, input.Description, input.Price, input.Stock)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	err := ps.tx.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		return recordEvent(ctx, events, model.EventTypeProductCreated, sqs.ActionCreated, product)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	return product, nil
}

func (ps *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return ps.products.FindByID(ctx, id)
}

// UpdateProduct applies a partial update to the product with the given id.
// The price rule is checked against the locked, pre-update row; a rejected
// update returns *model.InvalidPriceChangeError and writes nothing.
func (ps *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, update model.ProductUpdate) (*model.Product, error) {
	if update.IsEmpty() {
		return ps.products.FindByID(ctx, id)
	}

	var updated *model.Product
	err := ps.tx.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
		product, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := update.Apply(product); err != nil {
			return err
		}
		if err := product.Validate(); err != nil {
			return err
		}
		if err := products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return recordEvent(ctx, events, model.EventTypeProductUpdated, sqs.ActionUpdated, product)
	})
	if err != nil {
		var priceErr *model.InvalidPriceChangeError
		if errors.As(err, &priceErr) {
			metrics.BusinessRuleViolations.WithLabelValues(metrics.RulePriceChange).Inc()
		}
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	return updated, nil
}

// DeleteProduct permanently removes the product with the given id.
// Products with stock left are kept and model.ErrProductCannotBeDeleted is returned.
func (ps *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := ps.tx.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
		product, err := products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !product.CanBeDeleted() {
			return model.ErrProductCannotBeDeleted
		}
		if err := products.DeleteByID(ctx, product.ID); err != nil {
			return err
		}
		return recordEvent(ctx, events, model.EventTypeProductDeleted, sqs.ActionDeleted, product)
	})
	if err != nil {
		if errors.Is(err, model.ErrProductCannotBeDeleted) {
			metrics.BusinessRuleViolations.WithLabelValues(metrics.RuleDeletion).Inc()
		}
		return err
	}

	metrics.ProductsDeleted.Inc()
	return nil
}

func (ps *ProductService) ListProducts(ctx context.Context, query repository.ProductQuery) (*repository.ProductPage, error) {
	return ps.products.List(ctx, query)
}

func recordEvent(ctx context.Context, events repository.EventRepository, eventType, action string, product *model.Product) error {
	data, err := json.Marshal(sqs.ProductMessage{
		Action:    action,
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
		IsActive:  product.IsActive,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	return events.Create(ctx, &model.Event{
		EventType: eventType,
		EventData: data,
		Status:    model.EventStatusPending,
	})
}
