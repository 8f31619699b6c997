package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	// maxOrderNumberAttempts bounds regeneration after an order number
	// collision.
	maxOrderNumberAttempts = 3

	customDeliveryLeadTime = 14 * 24 * time.Hour

	userOrdersPageSize  = 10
	adminOrdersPageSize = 20
)

type CreateOrderRequest struct {
	UserID          int64                `json:"-"`
	Items           []OrderItemRequest   `json:"items"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	ShippingAddress models.Address       `json:"shippingAddress"`
	BillingAddress  *models.Address      `json:"billingAddress"`
	Notes           string               `json:"notes"`
}

// OrderItemRequest is one submitted line. Price is what the client saw; it
// is validated but the stored price is always read from the catalog.
type OrderItemRequest struct {
	ProductID     int64                 `json:"product"`
	Quantity      int                   `json:"quantity"`
	Price         decimal.Decimal       `json:"price"`
	Size          models.Size           `json:"size"`
	Color         *models.Color         `json:"color"`
	Customization *models.Customization `json:"customization"`
}

func (r CreateOrderRequest) Validate() error {
	var v models.Validator
	v.Check(len(r.Items) > 0, "items", "At least one item is required")
	for i, item := range r.Items {
		v.Check(item.ProductID > 0, fmt.Sprintf("items[%d].product", i), "Invalid product ID")
		v.Check(item.Quantity >= 1, fmt.Sprintf("items[%d].quantity", i), "Quantity must be at least 1")
		v.Check(!item.Price.IsNegative(), fmt.Sprintf("items[%d].price", i), "Price must be a positive number")
		v.Check(item.Size == "" || item.Size.Valid(), fmt.Sprintf("items[%d].size", i), "Invalid size")
	}
	v.Check(r.PaymentMethod.Valid(), "paymentMethod", "Invalid payment method")
	models.ValidateShippingAddress(&v, r.ShippingAddress)
	return v.Err()
}

// CreateOrder places a catalog order. Product checks, the order insert and
// every stock decrement run in one serializable transaction, so either the
// whole order lands with inventory reduced or nothing changes.
func CreateOrder(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	need := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		need[item.ProductID] += item.Quantity
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, req.UserID); err != nil {
			return err
		}

		now := time.Now()
		order = newOrder(req.UserID, models.OrderKindCatalog, req.PaymentMethod, req.ShippingAddress, req.BillingAddress)
		order.Notes.Customer = req.Notes

		locked := make(map[int64]*models.Product, len(need))
		for _, item := range req.Items {
			product, ok := locked[item.ProductID]
			if !ok {
				var err error
				product, err = ReserveStock(ctx, tx, item.ProductID, need[item.ProductID])
				if err != nil {
					return err
				}
				locked[item.ProductID] = product
			}

			productID := product.ID
			summary := product.Summary()
			order.Items = append(order.Items, models.OrderItem{
				ProductID:     &productID,
				Product:       &summary,
				Quantity:      item.Quantity,
				UnitPrice:     product.EffectivePrice(now),
				Size:          item.Size,
				Color:         item.Color,
				Customization: item.Customization,
			})
		}

		if err := pricing.Recalculate(order); err != nil {
			return err
		}

		if err := insertOrder(ctx, tx, order, CatalogOrderPrefix); err != nil {
			return err
		}

		for productID, quantity := range need {
			if err := DecrementStock(ctx, tx, productID, quantity); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

type CustomOrderRequest struct {
	UserID          int64                `json:"-"`
	OutfitType      string               `json:"outfitType"`
	SelectedColor   string               `json:"selectedColor"`
	Quantity        int                  `json:"quantity"`
	CustomText      string               `json:"customText"`
	TextPlacement   string               `json:"textPlacement"`
	DesignName      string               `json:"designName"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	ShippingAddress models.Address       `json:"shippingAddress"`
}

// CreateCustomOrder places a made-to-order item. It is priced from the
// customization table and never touches inventory.
func CreateCustomOrder(ctx context.Context, db *sql.DB, req CustomOrderRequest) (*models.Order, error) {
	quote, err := pricing.QuoteCustom(pricing.CustomRequest{
		OutfitType: req.OutfitType,
		Quantity:   req.Quantity,
		CustomText: req.CustomText,
		Color:      req.SelectedColor,
	})

	var v models.Validator
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			v.Check(false, f.Field, f.Message)
		}
	} else if err != nil {
		return nil, err
	}
	v.Check(req.TextPlacement == "" || pricing.ValidTextPlacement(req.TextPlacement), "textPlacement", "Invalid text placement")
	v.Check(utf8.RuneCountInString(req.DesignName) <= 100, "designName", "Design name cannot exceed 100 characters")
	v.Check(req.PaymentMethod.Valid(), "paymentMethod", "Invalid payment method")
	v.Check(!req.ShippingAddress.IsZero(), "shippingAddress", "Shipping address is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	designName := strings.TrimSpace(req.DesignName)
	if designName == "" {
		designName = "Custom " + req.OutfitType
	}

	var order *models.Order

	err = database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if err := ensureUser(ctx, tx, req.UserID); err != nil {
			return err
		}

		order = newOrder(req.UserID, models.OrderKindCustom, req.PaymentMethod, req.ShippingAddress, nil)
		eta := time.Now().Add(customDeliveryLeadTime)
		order.EstimatedDelivery = &eta
		order.Items = []models.OrderItem{{
			Quantity:  quote.Quantity,
			UnitPrice: quote.UnitPrice,
			Customization: &models.Customization{
				Text:          req.CustomText,
				TextPlacement: req.TextPlacement,
				CustomColor:   req.SelectedColor,
				OutfitType:    req.OutfitType,
				DesignName:    designName,
			},
		}}

		if err := pricing.Recalculate(order); err != nil {
			return err
		}

		return insertOrder(ctx, tx, order, CustomOrderPrefix)
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func newOrder(userID int64, kind models.OrderKind, method models.PaymentMethod, shipping models.Address, billing *models.Address) *models.Order {
	order := &models.Order{
		UserID:          userID,
		Kind:            kind,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   method,
		ShippingAddress: shipping,
		BillingAddress:  shipping,
	}
	if billing != nil && !billing.IsZero() {
		order.BillingAddress = *billing
	}
	return order
}

func ensureUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
		userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return database.ErrUserNotFound
	}
	return nil
}

// insertOrder writes the order row and its items. A collision on the order
// number is rolled back to a savepoint and retried with a fresh number.
func insertOrder(ctx context.Context, tx *sql.Tx, order *models.Order, prefix string) error {
	for attempt := 1; ; attempt++ {
		order.OrderNumber = NewOrderNumber(prefix, time.Now())

		if _, err := tx.ExecContext(ctx, `SAVEPOINT order_number`); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, order_number, kind, subtotal, tax, shipping, discount, total,
				status, payment_status, payment_method, shipping_address, billing_address,
				customer_notes, estimated_delivery)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 RETURNING id, created_at, updated_at, version`,
			order.UserID, order.OrderNumber, order.Kind, order.Subtotal, order.Tax, order.Shipping,
			order.Discount, order.Total, order.Status, order.PaymentStatus, order.PaymentMethod,
			order.ShippingAddress, order.BillingAddress, order.Notes.Customer, order.EstimatedDelivery,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
		if err == nil {
			if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT order_number`); err != nil {
				return fmt.Errorf("release savepoint: %w", err)
			}
			break
		}

		if !database.IsUniqueViolation(err, "orders_order_number_key") || attempt == maxOrderNumberAttempts {
			return fmt.Errorf("create order: %w", err)
		}
		if _, rbErr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT order_number`); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, line_no, product_id, quantity, unit_price, subtotal,
				size, color, customization)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id, created_at`,
			order.ID, i+1, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
			nullSize(item.Size), item.Color, item.Customization,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

func nullSize(s models.Size) sql.NullString {
	return sql.NullString{String: string(s), Valid: s != ""}
}

const orderColumns = `o.id, o.user_id, o.order_number, o.kind, o.subtotal, o.tax, o.shipping, o.discount, o.total,
	o.status, o.payment_status, o.payment_method, o.shipping_address, o.billing_address,
	o.customer_notes, o.internal_notes, o.tracking_number, o.tracking_carrier, o.tracking_url,
	o.estimated_delivery, o.shipped_at, o.delivered_at, o.cancelled_at, o.cancelled_by,
	o.cancellation_reason, o.created_at, o.updated_at, o.version`

func scanOrder(row rowScanner, extra ...any) (*models.Order, error) {
	order := &models.Order{}
	var tracking models.Tracking
	dest := []any{
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Kind,
		&order.Subtotal,
		&order.Tax,
		&order.Shipping,
		&order.Discount,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.Notes.Customer,
		&order.Notes.Internal,
		&tracking.Number,
		&tracking.Carrier,
		&tracking.URL,
		&order.EstimatedDelivery,
		&order.ShippedAt,
		&order.DeliveredAt,
		&order.CancelledAt,
		&order.CancelledBy,
		&order.CancellationReason,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if !tracking.Empty() {
		order.Tracking = &tracking
	}
	return order, nil
}

// GetOrder loads an order with its items and the customer summary.
func GetOrder(ctx context.Context, q database.Queryer, id int64) (*models.Order, error) {
	return getOrder(ctx, q, id, "")
}

func getOrder(ctx context.Context, q database.Queryer, id int64, lock string) (*models.Order, error) {
	var customer models.UserSummary
	query := `
		SELECT ` + orderColumns + `, u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1 ` + lock

	order, err := scanOrder(q.QueryRowContext(ctx, query, id), &customer.ID, &customer.Name, &customer.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.Customer = &customer

	items, err := loadItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// loadItems fetches the items of several orders at once, keyed by order id
// and kept in line order.
func loadItems(ctx context.Context, q database.Queryer, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	result := make(map[int64][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.subtotal,
		       i.size, i.color, i.customization, i.created_at,
		       p.id, p.name, p.price, p.category, p.images
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.line_no`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      models.OrderItem
			size      sql.NullString
			pID       sql.NullInt64
			pName     sql.NullString
			pPrice    decimal.NullDecimal
			pCategory sql.NullString
			pImages   models.ImageList
		)
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&size,
			&item.Color,
			&item.Customization,
			&item.CreatedAt,
			&pID,
			&pName,
			&pPrice,
			&pCategory,
			&pImages,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.Size = models.Size(size.String)
		if pID.Valid {
			item.Product = &models.ProductSummary{
				ID:       pID.Int64,
				Name:     pName.String,
				Price:    pPrice.Decimal,
				Category: pCategory.String,
				Images:   pImages,
			}
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

type OrderFilter struct {
	PageRequest
	UserID    int64
	Status    models.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// ListUserOrders pages through one user's orders, newest first.
func ListUserOrders(ctx context.Context, db *sql.DB, userID int64, status models.OrderStatus, page PageRequest) (*OffsetPage[models.Order], error) {
	return listOrders(ctx, db, OrderFilter{PageRequest: page.Normalize(userOrdersPageSize), UserID: userID, Status: status}, false)
}

// ListAllOrders is the administrative listing, filterable by status and an
// inclusive creation date range. Each order carries its customer summary.
func ListAllOrders(ctx context.Context, db *sql.DB, f OrderFilter) (*OffsetPage[models.Order], error) {
	f.PageRequest = f.PageRequest.Normalize(adminOrdersPageSize)
	return listOrders(ctx, db, f, true)
}

func listOrders(ctx context.Context, db *sql.DB, f OrderFilter, withCustomer bool) (*OffsetPage[models.Order], error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, &models.ValidationError{
			Message: "Validation errors",
			Fields:  []models.FieldError{{Field: "status", Message: "Invalid status"}},
		}
	}

	var (
		conds []string
		args  []any
	)
	if f.UserID != 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("o.created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("o.created_at <= $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, f.PageSize, f.Offset())
	query := fmt.Sprintf(`
		SELECT %s, u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, orderColumns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []models.Order
		ids    []int64
	)
	for rows.Next() {
		var customer models.UserSummary
		order, err := scanOrder(rows, &customer.ID, &customer.Name, &customer.Email)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if withCustomer {
			order.Customer = &customer
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	items, err := loadItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return newOffsetPage(orders, total, f.PageRequest), nil
}

// ListOrdersCursor pages a user's orders by (created_at, id) keyset. Items
// are not loaded.
func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage[models.Order], error) {
	if limit < 1 || limit > MaxPageSize {
		limit = userOrdersPageSize
	}

	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, &models.ValidationError{
			Message: "Invalid cursor",
			Fields:  []models.FieldError{{Field: "cursor", Message: "Invalid cursor"}},
		}
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.user_id = $1
		  AND (o.created_at, o.id) < ($2, $3)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

type UpdateStatusRequest struct {
	Status             models.OrderStatus   `json:"status"`
	Tracking           *models.Tracking     `json:"tracking"`
	CancellationReason string               `json:"cancellationReason"`
	PaymentStatus      models.PaymentStatus `json:"paymentStatus"`
	InternalNotes      *string              `json:"internalNotes"`
}

// UpdateOrderStatus applies an administrative status change under a row
// lock. Totals are recomputed from the stored items before the write.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID, actorID int64, req UpdateStatusRequest, strict bool) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var err error
		order, err = getOrder(ctx, tx, orderID, "FOR UPDATE OF o")
		if err != nil {
			return err
		}

		err = order.ApplyStatus(models.StatusUpdate{
			Status:             req.Status,
			ActorID:            actorID,
			At:                 time.Now(),
			CancellationReason: req.CancellationReason,
			Tracking:           req.Tracking,
			PaymentStatus:      req.PaymentStatus,
			Strict:             strict,
		})
		if err != nil {
			return err
		}
		if req.InternalNotes != nil {
			order.Notes.Internal = *req.InternalNotes
		}

		if err := pricing.Recalculate(order); err != nil {
			return err
		}

		var tracking models.Tracking
		if order.Tracking != nil {
			tracking = *order.Tracking
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $2, payment_status = $3, subtotal = $4, tax = $5, shipping = $6, total = $7,
			     tracking_number = $8, tracking_carrier = $9, tracking_url = $10,
			     shipped_at = $11, delivered_at = $12, cancelled_at = $13, cancelled_by = $14,
			     cancellation_reason = $15, internal_notes = $16,
			     updated_at = NOW(), version = version + 1
			 WHERE id = $1
			 RETURNING updated_at, version`,
			order.ID, order.Status, order.PaymentStatus, order.Subtotal, order.Tax, order.Shipping, order.Total,
			tracking.Number, tracking.Carrier, tracking.URL,
			order.ShippedAt, order.DeliveredAt, order.CancelledAt, order.CancelledBy,
			order.CancellationReason, order.Notes.Internal,
		).Scan(&order.UpdatedAt, &order.Version)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}
