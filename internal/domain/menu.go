package domain

import (
	"errors"
	"fmt"
	"math"
)

// Default table ids for the menu dataset.
const (
	TableCategories         = "categories"
	TableCustomizations     = "customizations"
	TableMenu               = "menu"
	TableMenuCustomizations = "menu_customizations"
)

// Tables holds the ids of the four menu tables.
type Tables struct {
	Categories         string
	Customizations     string
	Menu               string
	MenuCustomizations string
}

// DefaultTables returns the stock table ids.
func DefaultTables() Tables {
	return Tables{
		Categories:         TableCategories,
		Customizations:     TableCustomizations,
		Menu:               TableMenu,
		MenuCustomizations: TableMenuCustomizations,
	}
}

// UnknownCategory is stored as a menu item's category reference when the
// named category could not be resolved.
const UnknownCategory = "unknown"

// Rating bounds enforced on every stored menu item.
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// ErrInvalid is wrapped by every record validation failure.
var ErrInvalid = errors.New("invalid record")

// ClampRating forces r into [MinRating, MaxRating]. NaN clamps to MinRating.
func ClampRating(r float64) float64 {
	if math.IsNaN(r) {
		return MinRating
	}
	return math.Min(math.Max(r, MinRating), MaxRating)
}

// Category groups menu items.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Fields returns the row payload for the categories table.
func (c Category) Fields() map[string]any {
	return map[string]any{
		"name":        c.Name,
		"description": c.Description,
	}
}

// Validate checks the category before it is submitted.
func (c Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	return nil
}

// Customization is an optional add-on with a price in minor units.
type Customization struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Type  string `json:"type"`
}

// Fields returns the row payload for the customizations table.
func (c Customization) Fields() map[string]any {
	return map[string]any{
		"name":  c.Name,
		"price": c.Price,
		"type":  c.Type,
	}
}

// Validate checks the customization before it is submitted.
func (c Customization) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, fmt.Errorf("%w: customization name is required", ErrInvalid))
	}
	if c.Price < 0 {
		errs = append(errs, fmt.Errorf("%w: customization %q price %d is negative", ErrInvalid, c.Name, c.Price))
	}
	if c.Type == "" {
		errs = append(errs, fmt.Errorf("%w: customization %q type is required", ErrInvalid, c.Name))
	}
	return errors.Join(errs...)
}

// MenuItem is a dish as stored: price in minor units, rating in [1, 5] and
// Category holding a category row id or UnknownCategory.
type MenuItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Price       int64   `json:"price"`
	Rating      float64 `json:"rating"`
	Calories    int64   `json:"calories"`
	Protein     int64   `json:"protein"`
	Category    string  `json:"categories"`
}

// Fields returns the row payload for the menu table.
func (m MenuItem) Fields() map[string]any {
	return map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"image_url":   m.ImageURL,
		"price":       m.Price,
		"rating":      m.Rating,
		"calories":    m.Calories,
		"protein":     m.Protein,
		"categories":  m.Category,
	}
}

// Validate checks the menu item before it is submitted.
func (m MenuItem) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, fmt.Errorf("%w: menu item name is required", ErrInvalid))
	}
	if m.Price < 0 {
		errs = append(errs, fmt.Errorf("%w: menu item %q price %d is negative", ErrInvalid, m.Name, m.Price))
	}
	if m.Rating < MinRating || m.Rating > MaxRating || math.IsNaN(m.Rating) {
		errs = append(errs, fmt.Errorf("%w: menu item %q rating %v outside [%v, %v]", ErrInvalid, m.Name, m.Rating, MinRating, MaxRating))
	}
	if m.Calories < 0 {
		errs = append(errs, fmt.Errorf("%w: menu item %q calories %d is negative", ErrInvalid, m.Name, m.Calories))
	}
	if m.Protein < 0 {
		errs = append(errs, fmt.Errorf("%w: menu item %q protein %d is negative", ErrInvalid, m.Name, m.Protein))
	}
	if m.Category == "" {
		errs = append(errs, fmt.Errorf("%w: menu item %q category reference is required", ErrInvalid, m.Name))
	}
	return errors.Join(errs...)
}

// MenuCustomization links a menu row to a customization row.
type MenuCustomization struct {
	Menu          string `json:"menu"`
	Customization string `json:"customizations"`
}

// Fields returns the row payload for the join table.
func (j MenuCustomization) Fields() map[string]any {
	return map[string]any{
		"menu":           j.Menu,
		"customizations": j.Customization,
	}
}

// Validate checks that both endpoints are set.
func (j MenuCustomization) Validate() error {
	if j.Menu == "" || j.Customization == "" {
		return fmt.Errorf("%w: join row needs both menu and customization ids", ErrInvalid)
	}
	return nil
}

// CategoryRecord is a stored category with its row id.
type CategoryRecord struct {
	ID string `json:"id"`
	Category
}

// CategoryFromRow decodes a categories row.
func CategoryFromRow(r *Row) CategoryRecord {
	return CategoryRecord{
		ID:       r.ID,
		Category: Category{Name: r.String("name"), Description: r.String("description")},
	}
}

// CustomizationRecord is a stored customization with its row id.
type CustomizationRecord struct {
	ID string `json:"id"`
	Customization
}

// CustomizationFromRow decodes a customizations row.
func CustomizationFromRow(r *Row) CustomizationRecord {
	return CustomizationRecord{
		ID: r.ID,
		Customization: Customization{
			Name:  r.String("name"),
			Price: r.Int("price"),
			Type:  r.String("type"),
		},
	}
}

// MenuRecord is a stored menu item with its row id.
type MenuRecord struct {
	ID string `json:"id"`
	MenuItem
}

// MenuFromRow decodes a menu row.
func MenuFromRow(r *Row) MenuRecord {
	return MenuRecord{
		ID: r.ID,
		MenuItem: MenuItem{
			Name:        r.String("name"),
			Description: r.String("description"),
			ImageURL:    r.String("image_url"),
			Price:       r.Int("price"),
			Rating:      r.Float("rating"),
			Calories:    r.Int("calories"),
			Protein:     r.Int("protein"),
			Category:    r.String("categories"),
		},
	}
}
