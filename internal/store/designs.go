package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/pricing"
)

type DesignInput struct {
	OutfitType    string `json:"outfitType"`
	SelectedColor string `json:"selectedColor"`
	CustomText    string `json:"customText"`
	TextPlacement string `json:"textPlacement"`
	DesignName    string `json:"designName"`
}

func (in DesignInput) Validate() error {
	var v models.Validator
	v.Check(pricing.ValidOutfitType(in.OutfitType), "outfitType", "Invalid outfit type")
	v.Required(in.SelectedColor, "selectedColor", "Color is required")
	v.Check(utf8.RuneCountInString(in.CustomText) <= pricing.MaxCustomTextLength, "customText", "Custom text cannot exceed 50 characters")
	v.Check(in.TextPlacement == "" || pricing.ValidTextPlacement(in.TextPlacement), "textPlacement", "Invalid text placement")
	v.Check(utf8.RuneCountInString(in.DesignName) <= 100, "designName", "Design name cannot exceed 100 characters")
	return v.Err()
}

// SaveDesign stores a customization under a fresh UUID. An empty name
// becomes "My <outfit type> Design".
func SaveDesign(ctx context.Context, db *sql.DB, userID int64, in DesignInput) (*models.Design, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.DesignName)
	if name == "" {
		name = fmt.Sprintf("My %s Design", in.OutfitType)
	}

	design := &models.Design{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          name,
		OutfitType:    in.OutfitType,
		SelectedColor: in.SelectedColor,
		CustomText:    in.CustomText,
		TextPlacement: in.TextPlacement,
	}

	err := db.QueryRowContext(ctx,
		`INSERT INTO designs (id, user_id, name, outfit_type, selected_color, custom_text, text_placement)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		design.ID, design.UserID, design.Name, design.OutfitType, design.SelectedColor,
		design.CustomText, design.TextPlacement,
	).Scan(&design.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("save design: %w", err)
	}

	return design, nil
}

func ListDesigns(ctx context.Context, db *sql.DB, userID int64) ([]models.Design, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, outfit_type, selected_color, custom_text, text_placement, created_at
		FROM designs
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()

	designs := []models.Design{}
	for rows.Next() {
		var d models.Design
		err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.OutfitType, &d.SelectedColor, &d.CustomText, &d.TextPlacement, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		designs = append(designs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return designs, nil
}

// GetDesign returns one of the user's designs. Designs of other users are
// reported as not found.
func GetDesign(ctx context.Context, db *sql.DB, userID int64, id string) (*models.Design, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrDesignNotFound
	}

	var d models.Design
	err := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, outfit_type, selected_color, custom_text, text_placement, created_at
		FROM designs
		WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.OutfitType, &d.SelectedColor, &d.CustomText, &d.TextPlacement, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrDesignNotFound
		}
		return nil, fmt.Errorf("get design: %w", err)
	}

	return &d, nil
}
