package store

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/johnwards/menuseed/internal/domain"
)

// now returns the current UTC time formatted as an ISO-8601 timestamp.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

var customIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,35}$`)

// resolveID returns the id to store a new row under. Empty and "unique()"
// ask for a generated, time-ordered id.
func resolveID(id string) (string, error) {
	if id == "" || id == domain.UniqueID {
		v, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		return v.String(), nil
	}
	if !customIDPattern.MatchString(id) {
		return "", &ValidationError{Message: fmt.Sprintf("invalid row id %q", id)}
	}
	return id, nil
}

// normalizeFields checks fields against the table schema and converts every
// value to its canonical Go type: string, int64 or float64. Nil values are
// treated as absent.
func normalizeFields(def *domain.TableDef, fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, raw := range fields {
		col, ok := def.Column(name)
		if !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("unknown column %q in table %s", name, def.ID)}
		}
		if raw == nil {
			continue
		}
		v, err := coerce(def.ID, col, raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	for _, col := range def.Columns {
		if !col.Required {
			continue
		}
		v, ok := out[col.Name]
		if !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("missing required column %q in table %s", col.Name, def.ID)}
		}
		if s, isStr := v.(string); isStr && s == "" {
			return nil, &ValidationError{Message: fmt.Sprintf("required column %q in table %s is empty", col.Name, def.ID)}
		}
	}
	return out, nil
}

func coerce(table string, col domain.Column, raw any) (any, error) {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Message: fmt.Sprintf("%s.%s: ", table, col.Name) + fmt.Sprintf(format, args...)}
	}

	switch col.Type {
	case domain.TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid("expected string, got %T", raw)
		}
		if col.Size > 0 && utf8.RuneCountInString(s) > col.Size {
			return nil, invalid("length %d exceeds %d", utf8.RuneCountInString(s), col.Size)
		}
		return s, nil

	case domain.TypeInteger:
		f, ok := toFloat(raw)
		if !ok {
			return nil, invalid("expected integer, got %T", raw)
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, invalid("expected integer, got %v", f)
		}
		if err := checkRange(col, f); err != nil {
			return nil, invalid("%v", err)
		}
		return int64(f), nil

	case domain.TypeDouble:
		f, ok := toFloat(raw)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, invalid("expected number, got %v", raw)
		}
		if err := checkRange(col, f); err != nil {
			return nil, invalid("%v", err)
		}
		return f, nil
	}
	return nil, invalid("unsupported column type %q", col.Type)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func checkRange(col domain.Column, f float64) error {
	if col.Min != nil && f < *col.Min {
		return fmt.Errorf("value %v below minimum %v", f, *col.Min)
	}
	if col.Max != nil && f > *col.Max {
		return fmt.Errorf("value %v above maximum %v", f, *col.Max)
	}
	return nil
}

// encodeValue renders a normalized value as stored text.
func encodeValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// decodeValue parses stored text back into the column's Go type.
func decodeValue(col domain.Column, s string) any {
	switch col.Type {
	case domain.TypeInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case domain.TypeDouble:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// validateFilters rejects filters on unknown columns or with unknown operators.
func validateFilters(def *domain.TableDef, filters []domain.Filter) error {
	for _, f := range filters {
		if _, ok := def.Column(f.Column); !ok {
			return &ValidationError{Message: fmt.Sprintf("cannot filter on unknown column %q in table %s", f.Column, def.ID)}
		}
		if !slices.Contains([]string{domain.OpEqual, domain.OpContains}, f.Operator) {
			return &ValidationError{Message: fmt.Sprintf("invalid operator: %s", f.Operator)}
		}
	}
	return nil
}

// matches reports whether the stored text of a column satisfies a filter.
func matches(f domain.Filter, stored string, present bool) bool {
	if !present {
		return false
	}
	switch f.Operator {
	case domain.OpEqual:
		return stored == f.Value
	case domain.OpContains:
		return strings.Contains(strings.ToLower(stored), strings.ToLower(f.Value))
	}
	return false
}
