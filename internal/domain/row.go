package domain

// UniqueID asks the row store to assign a fresh id on create.
const UniqueID = "unique()"

// Row is a single record in a row-store table.
type Row struct {
	ID        string         `json:"id"`
	Table     string         `json:"table"`
	Data      map[string]any `json:"data"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

// String returns the named field as a string, or "" when absent or not a string.
func (r *Row) String(field string) string {
	s, _ := r.Data[field].(string)
	return s
}

// Int returns the named field as an int64. JSON-decoded numbers arrive as
// float64 and are truncated toward zero.
func (r *Row) Int(field string) int64 {
	switch v := r.Data[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Float returns the named field as a float64.
func (r *Row) Float(field string) float64 {
	switch v := r.Data[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Filter operators supported by ListRows.
const (
	OpEqual    = "EQ"
	OpContains = "CONTAINS"
)

// Filter restricts ListRows to rows whose column matches Value.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Equal builds an exact-match filter.
func Equal(column, value string) Filter {
	return Filter{Column: column, Operator: OpEqual, Value: value}
}

// Contains builds a substring filter.
func Contains(column, value string) Filter {
	return Filter{Column: column, Operator: OpContains, Value: value}
}

// ListOpts holds the parameters for listing rows.
type ListOpts struct {
	Limit   int
	After   string
	Filters []Filter
}

// RowPage is one page of rows. Total counts every row matching the filters,
// not just the rows on this page.
type RowPage struct {
	Rows    []*Row `json:"rows"`
	Total   int    `json:"total"`
	After   string `json:"after,omitempty"`
	HasMore bool   `json:"hasMore"`
}
