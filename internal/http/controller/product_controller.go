package controller

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
	"github.com/iyhunko/inventory-service/internal/service"
	"github.com/shopspring/decimal"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"required,min=0,max=2147483647"`
}

// UpdateProductRequest represents the request body for a partial product update.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0,max=2147483647"`
}

// ListProductsRequest represents the query parameters for listing products.
type ListProductsRequest struct {
	Search   string `form:"search"`
	IsActive string `form:"is_active"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// PaginationResponse represents the pagination block of a product listing.
type PaginationResponse struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	LastPage    int  `json:"last_page"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// ListProductsResponse represents the data of a product listing.
type ListProductsResponse struct {
	Products   []ProductResponse  `json:"products"`
	Pagination PaginationResponse `json:"pagination"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, bindingErrors(err))
		return
	}
	if errs := validateProductFields(&req.Name, req.Price); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	input := service.CreateProductInput{
		Name:  req.Name,
		Price: *req.Price,
		Stock: *req.Stock,
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	createdProduct, err := pc.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", toProductResponse(createdProduct))
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "", toProductResponse(product))
}

// UpdateProduct handles the HTTP PUT and PATCH requests for updating a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, bindingErrors(err))
		return
	}
	if errs := validateProductFields(req.Name, req.Price); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	updatedProduct, err := pc.productService.UpdateProduct(c.Request.Context(), id, model.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product updated successfully", toProductResponse(updatedProduct))
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, "Product deleted successfully", nil)
}

// ListProducts handles the HTTP GET request for listing products with filters and pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidation(c, map[string][]string{"query": {"The query parameters are invalid."}})
		return
	}

	if req.PerPage > repository.MaxPerPage {
		respondValidation(c, map[string][]string{"per_page": {"The per_page field must not be greater than " + strconv.Itoa(repository.MaxPerPage) + "."}})
		return
	}

	query := repository.NewProductQuery().
		WithSearch(req.Search).
		ApplyPagination(req.Page, req.PerPage)
	if req.IsActive != "" {
		active, err := strconv.ParseBool(req.IsActive)
		if err != nil {
			respondValidation(c, map[string][]string{"is_active": {"The is_active field must be true or false."}})
			return
		}
		query.WithActive(active)
	}

	page, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	productResponses := make([]ProductResponse, 0, len(page.Products))
	for _, product := range page.Products {
		productResponses = append(productResponses, toProductResponse(product))
	}

	respond(c, http.StatusOK, "", ListProductsResponse{
		Products: productResponses,
		Pagination: PaginationResponse{
			CurrentPage: page.Pagination.CurrentPage,
			PerPage:     page.Pagination.PerPage,
			Total:       page.Pagination.Total,
			LastPage:    page.Pagination.LastPage,
			From:        page.Pagination.From,
			To:          page.Pagination.To,
		},
	})
}

func (pc *ProductController) handleError(c *gin.Context, err error) {
	var priceErr *model.InvalidPriceChangeError
	var constraintErr *repository.ConstraintError

	switch {
	case errors.As(err, &priceErr):
		respondValidation(c, map[string][]string{"price": {priceErr.Error()}})
	case errors.Is(err, model.ErrProductCannotBeDeleted):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, model.ErrInvalidProduct):
		respondValidation(c, map[string][]string{"product": {err.Error()}})
	case errors.As(err, &constraintErr):
		respondValidation(c, map[string][]string{"product": {constraintErr.Error()}})
	default:
		slog.Error("Product request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("err", err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Product not found")
		return uuid.Nil, false
	}
	return id, true
}

// validateProductFields checks the rules the binding tags cannot express.
func validateProductFields(name *string, price *decimal.Decimal) map[string][]string {
	errs := map[string][]string{}
	if name != nil && strings.TrimSpace(*name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if price != nil {
		if !price.IsPositive() {
			errs["price"] = append(errs["price"], "The price field must be at least 0.01.")
		} else if price.GreaterThan(model.MaxPrice) {
			errs["price"] = append(errs["price"], "The price field must not be greater than "+model.MaxPrice.StringFixed(2)+".")
		} else if !price.Equal(price.Round(2)) {
			errs["price"] = append(errs["price"], "The price field must have at most 2 decimal places.")
		}
	}
	return errs
}

func bindingErrors(err error) map[string][]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{typeErr.Field: {"The " + typeErr.Field + " field must be of type " + typeErr.Type.String() + "."}}
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string][]string{"body": {"The request body is malformed."}}
	}

	errs := make(map[string][]string, len(validationErrs))
	for _, fe := range validationErrs {
		field := strings.ToLower(fe.Field())
		errs[field] = append(errs[field], validationMessage(field, fe))
	}
	return errs
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "The " + field + " field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return "The " + field + " field must not be greater than " + fe.Param() + " characters."
		}
		return "The " + field + " field must not be greater than " + fe.Param() + "."
	case "min":
		return "The " + field + " field must be at least " + fe.Param() + "."
	default:
		return "The " + field + " field is invalid."
	}
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   product.UpdatedAt.Format(time.RFC3339),
	}
}
