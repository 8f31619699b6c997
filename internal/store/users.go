package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
)

const userColumns = `id, email, name, role, phone, address, is_active, created_at, updated_at, version`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Phone,
		&user.Address,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(ctx context.Context, db *sql.DB, email, name string, role models.Role) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}

	var v models.Validator
	v.Required(email, "email", "Email is required")
	validateName(&v, name)
	v.Check(role.Valid(), "role", "Role must be either user or admin")
	if err := v.Err(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (email, name, role, created_at, updated_at, version)
		VALUES ($1, $2, $3, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(name), role))
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return nil, fmt.Errorf("email %q: %w", email, database.ErrDuplicate)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, q database.Queryer, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// GetProfile returns the user with wishlist summaries attached.
func GetProfile(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	wishlist, err := ListWishlist(ctx, db, id)
	if err != nil {
		return nil, err
	}
	user.Wishlist = wishlist

	return user, nil
}

// ProfileUpdate carries the optional fields of a profile edit; nil leaves
// the stored value alone.
type ProfileUpdate struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

func UpdateProfile(ctx context.Context, db *sql.DB, id int64, in ProfileUpdate) (*models.User, error) {
	var v models.Validator
	if in.Name != nil {
		validateName(&v, *in.Name)
	}
	if in.Phone != nil {
		v.Check(validPhone(*in.Phone), "phone", "Please provide a valid phone number")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var name, phone *string
	if in.Name != nil {
		s := strings.TrimSpace(*in.Name)
		name = &s
	}
	if in.Phone != nil {
		s := strings.TrimSpace(*in.Phone)
		phone = &s
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    address = COALESCE($4, address),
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, id, name, phone, in.Address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

type UserFilter struct {
	PageRequest
	Search string
	Role   models.Role
}

func ListUsers(ctx context.Context, db *sql.DB, f UserFilter) (*OffsetPage[models.User], error) {
	page := f.PageRequest.Normalize(defaultPageSize)

	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	args = append(args, page.PageSize, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, userColumns, where, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(users, total, page), nil
}

type AdminUserUpdate struct {
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func AdminUpdateUser(ctx context.Context, db *sql.DB, id int64, in AdminUserUpdate) (*models.User, error) {
	var v models.Validator
	if in.Name != nil {
		validateName(&v, *in.Name)
	}
	if in.Role != nil {
		v.Check(in.Role.Valid(), "role", "Role must be either user or admin")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var name *string
	if in.Name != nil {
		s := strings.TrimSpace(*in.Name)
		name = &s
	}

	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    role = COALESCE($3, role),
		    is_active = COALESCE($4, is_active),
		    updated_at = NOW(),
		    version = version + 1
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, id, name, in.Role, in.IsActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user. Users that own orders cannot be removed since
// orders are never deleted.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return database.ErrReferenced
		}
		return fmt.Errorf("delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

const wishlistUserFK = "wishlist_items_user_id_fkey"

func AddToWishlist(ctx context.Context, db *sql.DB, userID, productID int64) ([]models.ProductSummary, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)`,
		userID, productID)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, database.ErrAlreadyInWishlist
		}
		if database.IsForeignKeyViolation(err, wishlistUserFK) {
			return nil, database.ErrUserNotFound
		}
		if database.IsForeignKeyViolation(err, "") {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}

	return ListWishlist(ctx, db, userID)
}

// RemoveFromWishlist is a no-op when the product is not listed.
func RemoveFromWishlist(ctx context.Context, db *sql.DB, userID, productID int64) ([]models.ProductSummary, error) {
	_, err := db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return nil, fmt.Errorf("remove from wishlist: %w", err)
	}

	return ListWishlist(ctx, db, userID)
}

func ListWishlist(ctx context.Context, q database.Queryer, userID int64) ([]models.ProductSummary, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.name, p.price, p.category, p.images, p.stock_quantity, p.is_active
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []models.ProductSummary{}
	for rows.Next() {
		var (
			s        models.ProductSummary
			stock    int
			isActive bool
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Category, &s.Images, &stock, &isActive); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		s.Stock = &stock
		s.IsActive = &isActive
		items = append(items, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func validateName(v *models.Validator, name string) {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	v.Check(n >= 2 && n <= 50, "name", "Name must be between 2 and 50 characters")
}

func validPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
