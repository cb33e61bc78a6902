package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

const productColumns = "id, name, description, price, stock, is_active, created_at, updated_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getExecutor returns the active executor (transaction if exists, otherwise db)
func (r *ProductRepository) getExecutor() dbExecutor {
	if r.txn != nil {
		return r.txn
	}
	return r.db
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	// Only initialize metadata if not already set
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	query := `INSERT INTO products (id, name, description, price, stock, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.IsActive, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", mapConstraintError(err))
	}

	return nil
}

// FindByID retrieves a single product by ID.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves a single product by ID and locks its row.
// Outside of a transaction the lock is released as soon as the statement completes.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*model.Product, error) {
	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	product, err := scanProduct(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

// Update writes all mutable fields of the product and refreshes its updated_at.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, stock = $4, is_active = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING updated_at`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, product.Name, product.Description, product.Price,
		product.Stock, product.IsActive, product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", product.ID, repository.ErrNotFound)
		}
		return fmt.Errorf("failed to update product: %w", mapConstraintError(err))
	}

	return nil
}

// DeleteByID deletes a product by ID.
func (r *ProductRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	stmt, err := r.getExecutor().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, repository.ErrNotFound)
	}

	return nil
}

// List retrieves one page of products matching the query together with the total match count.
func (r *ProductRepository) List(ctx context.Context, query repository.ProductQuery) (*repository.ProductPage, error) {
	query = query.Normalized()
	where, args := buildProductFilter(query)

	executor := r.getExecutor()

	countStmt, err := executor.PrepareContext(ctx, "SELECT COUNT(*) FROM products"+where)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer countStmt.Close()

	var total int
	if err := countStmt.QueryRowContext(ctx, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products")
	queryBuilder.WriteString(where)
	// Creation order, id breaks ties between rows created in the same instant
	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, query.PerPage, query.Offset())

	stmt, err := executor.PrepareContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0, query.PerPage)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &repository.ProductPage{
		Products:   products,
		Pagination: repository.NewPagination(query.Page, query.PerPage, total, len(products)),
	}, nil
}

// buildProductFilter returns the WHERE clause shared by the count and select statements.
func buildProductFilter(query repository.ProductQuery) (string, []interface{}) {
	var where strings.Builder
	where.WriteString(" WHERE 1=1")

	var args []interface{}
	argIndex := 1

	if query.Search != "" {
		where.WriteString(fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+likeEscaper.Replace(query.Search)+"%")
		argIndex++
	}

	if query.IsActive != nil {
		where.WriteString(fmt.Sprintf(" AND is_active = $%d", argIndex))
		args = append(args, *query.IsActive)
	}

	return where.String(), args
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var product model.Product
	var description sql.NullString
	err := row.Scan(&product.ID, &product.Name, &description, &product.Price, &product.Stock,
		&product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	product.Description = description.String
	return &product, nil
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolationErrCode, pgUniqueViolationErrCode, pgNumericOutOfRangeCode:
			return &repository.ConstraintError{Constraint: pgErr.ConstraintName, Detail: pgErr.Message}
		}
	}
	return err
}
