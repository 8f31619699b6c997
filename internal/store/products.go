package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const productColumns = `id, sku, name, description, price, original_price, category, subcategory, brand,
	images, colors, sizes, tags, stock_quantity, is_active, is_featured, is_customizable,
	discount_percentage, discount_valid_until, rating_average, rating_count,
	created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.Category,
		&p.Subcategory,
		&p.Brand,
		&p.Images,
		&p.Colors,
		&p.Sizes,
		&p.Tags,
		&p.StockQuantity,
		&p.IsActive,
		&p.IsFeatured,
		&p.IsCustomizable,
		&p.DiscountPercentage,
		&p.DiscountValidUntil,
		&p.Ratings.Average,
		&p.Ratings.Count,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type ProductInput struct {
	SKU                string            `json:"sku"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Price              decimal.Decimal   `json:"price"`
	OriginalPrice      *decimal.Decimal  `json:"originalPrice"`
	Category           string            `json:"category"`
	Subcategory        string            `json:"subcategory"`
	Brand              string            `json:"brand"`
	Images             models.ImageList  `json:"images"`
	Colors             models.ColorList  `json:"colors"`
	Sizes              models.SizeList   `json:"sizes"`
	Tags               models.StringList `json:"tags"`
	Stock              int               `json:"stock"`
	IsFeatured         bool              `json:"isFeatured"`
	IsCustomizable     bool              `json:"isCustomizable"`
	DiscountPercentage decimal.Decimal   `json:"discountPercentage"`
	DiscountValidUntil *time.Time        `json:"discountValidUntil"`
}

func (in ProductInput) Validate() error {
	var v models.Validator
	v.Required(in.Name, "name", "Product name is required")
	v.Check(utf8.RuneCountInString(in.Name) <= 100, "name", "Product name cannot exceed 100 characters")
	v.Required(in.Description, "description", "Product description is required")
	v.Check(utf8.RuneCountInString(in.Description) <= 2000, "description", "Description cannot exceed 2000 characters")
	v.Check(!in.Price.IsNegative(), "price", "Price cannot be negative")
	v.Check(in.OriginalPrice == nil || !in.OriginalPrice.IsNegative(), "originalPrice", "Original price cannot be negative")
	v.Check(models.ValidCategory(in.Category), "category", "Invalid product category")
	v.Check(in.Stock >= 0, "stock", "Stock cannot be negative")
	v.Check(!in.DiscountPercentage.IsNegative() && in.DiscountPercentage.LessThanOrEqual(decimal.NewFromInt(100)),
		"discountPercentage", "Discount must be between 0 and 100")
	for i, s := range in.Sizes {
		v.Check(s.Name.Valid(), fmt.Sprintf("sizes[%d].name", i), "Invalid size")
		v.Check(s.Stock >= 0, fmt.Sprintf("sizes[%d].stock", i), "Size stock cannot be negative")
	}
	return v.Err()
}

// CreateProduct inserts a catalog product, generating a SKU when none is
// given.
func CreateProduct(ctx context.Context, db *sql.DB, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = newSKU(in.Category, time.Now())
	}

	query := `
		INSERT INTO products (sku, name, description, price, original_price, category, subcategory, brand,
			images, colors, sizes, tags, stock_quantity, is_featured, is_customizable,
			discount_percentage, discount_valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query,
		sku, strings.TrimSpace(in.Name), in.Description, in.Price, in.OriginalPrice, in.Category,
		in.Subcategory, in.Brand, in.Images, in.Colors, in.Sizes, in.Tags, in.Stock,
		in.IsFeatured, in.IsCustomizable, in.DiscountPercentage, in.DiscountValidUntil,
	))
	if err != nil {
		if database.IsUniqueViolation(err, "products_sku_key") {
			return nil, fmt.Errorf("sku %q: %w", sku, database.ErrDuplicate)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, q database.Queryer, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// ReserveStock locks the product row without waiting and checks it can
// fill quantity. A held lock surfaces as ErrLockTimeout, which WithRetry
// treats as transient.
func ReserveStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE NOWAIT`

	product, err := scanProduct(tx.QueryRowContext(ctx, query, productID))
	if err != nil {
		if database.IsLockNotAvailable(err) {
			return nil, database.ErrLockTimeout
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &database.ProductError{ProductID: productID, Err: database.ErrProductNotFound}
		}
		return nil, fmt.Errorf("lock product (nowait): %w", err)
	}

	if !product.IsActive {
		return nil, &database.ProductError{ProductID: productID, ProductName: product.Name, Err: database.ErrProductUnavailable}
	}

	if product.StockQuantity < quantity {
		return nil, &database.ProductError{
			ProductID:   productID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Err:         database.ErrInsufficientStock,
		}
	}

	return product, nil
}

func UpdateStockOptimistic(ctx context.Context, db *sql.DB, productID int64, newStock int, version int) (*models.Product, error) {
	if newStock < 0 {
		return nil, &models.ValidationError{
			Message: "Validation errors",
			Fields:  []models.FieldError{{Field: "stock", Message: "Stock cannot be negative"}},
		}
	}

	query := `
		UPDATE products
		SET stock_quantity = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query, newStock, productID, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := GetProduct(ctx, db, productID); getErr != nil {
				return nil, getErr
			}
			return nil, database.ErrOptimisticLockFailed
		}
		return nil, fmt.Errorf("update stock: %w", err)
	}

	return product, nil
}

func DecrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $1,
		     version = version + 1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock_quantity >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &database.ProductError{ProductID: productID, Err: database.ErrInsufficientStock}
	}

	return nil
}

type ProductFilter struct {
	PageRequest
	Category        string
	Search          string
	IncludeInactive bool
}

func ListProducts(ctx context.Context, db *sql.DB, f ProductFilter) (*OffsetPage[models.Product], error) {
	page := f.PageRequest.Normalize(defaultPageSize)

	var (
		conds []string
		args  []any
	)
	if !f.IncludeInactive {
		conds = append(conds, "is_active")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, productColumns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, page), nil
}

const reviewUserFK = "product_reviews_user_id_fkey"

// AddReview stores a review and recomputes the product's rating aggregate
// from all of its reviews in the same transaction.
func AddReview(ctx context.Context, db *sql.DB, productID, userID int64, rating int, comment string) (*models.Product, error) {
	var v models.Validator
	v.Check(rating >= 1 && rating <= 5, "rating", "Rating must be between 1 and 5")
	v.Check(utf8.RuneCountInString(comment) <= 500, "comment", "Review comment cannot exceed 500 characters")
	if err := v.Err(); err != nil {
		return nil, err
	}

	var product *models.Product
	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID); err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_reviews (product_id, user_id, rating, comment) VALUES ($1, $2, $3, $4)`,
			productID, userID, rating, comment)
		if err != nil {
			if database.IsForeignKeyViolation(err, reviewUserFK) {
				return database.ErrUserNotFound
			}
			if database.IsForeignKeyViolation(err, "") {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("insert review: %w", err)
		}

		query := `
			UPDATE products p
			SET rating_average = agg.avg, rating_count = agg.cnt, updated_at = NOW()
			FROM (
				SELECT COALESCE(ROUND(AVG(rating), 2), 0) AS avg, COUNT(*) AS cnt
				FROM product_reviews WHERE product_id = $1
			) agg
			WHERE p.id = $1
			RETURNING ` + prefixColumns("p", productColumns)

		product, err = scanProduct(tx.QueryRowContext(ctx, query, productID))
		if err != nil {
			return fmt.Errorf("update rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func ListReviews(ctx context.Context, db *sql.DB, productID int64) ([]models.Review, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return reviews, nil
}

// prefixColumns qualifies a comma separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
