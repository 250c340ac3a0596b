package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
)

// rowErrors maps 4xx responses from the rows API onto store errors.
func rowErrors(table string) errorMapper {
	return func(status int, apiErr *api.Error) error {
		switch status {
		case http.StatusBadRequest:
			return &store.ValidationError{Message: apiErr.Message}
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, store.ErrNotFound)
		case http.StatusConflict:
			return conflictFrom(table, apiErr)
		}
		return nil
	}
}

// conflictFrom rebuilds a ConflictError from the envelope's duplicate detail.
func conflictFrom(table string, apiErr *api.Error) *store.ConflictError {
	ce := &store.ConflictError{Table: table, Value: apiErr.Message}
	for _, d := range apiErr.Errors {
		if d.Code != api.CodeDuplicateValue {
			continue
		}
		ce.Column = d.In
		if v := d.Context["table"]; len(v) > 0 {
			ce.Table = v[0]
		}
		if v := d.Context["value"]; len(v) > 0 {
			ce.Value = v[0]
		}
		break
	}
	return ce
}

// ListRows fetches one page of rows.
func (c *Client) ListRows(ctx context.Context, table string, opts domain.ListOpts) (*domain.RowPage, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.After != "" {
		q.Set("after", opts.After)
	}
	for _, f := range opts.Filters {
		switch f.Operator {
		case domain.OpEqual:
			q.Add("eq."+f.Column, f.Value)
		case domain.OpContains:
			q.Add("contains."+f.Column, f.Value)
		default:
			return nil, &store.ValidationError{Message: fmt.Sprintf("invalid operator: %s", f.Operator)}
		}
	}

	var page domain.RowPage
	op := "list " + table
	if err := c.do(ctx, op, http.MethodGet, c.endpoint(q, "v1", "tables", table, "rows"), http.NoBody, "", &page, rowErrors(table)); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRow fetches a single row.
func (c *Client) GetRow(ctx context.Context, table, id string) (*domain.Row, error) {
	var row domain.Row
	op := fmt.Sprintf("get %s/%s", table, id)
	if err := c.do(ctx, op, http.MethodGet, c.endpoint(nil, "v1", "tables", table, "rows", id), http.NoBody, "", &row, rowErrors(table)); err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateRow creates a row. An empty id or domain.UniqueID lets the server
// assign one.
func (c *Client) CreateRow(ctx context.Context, table, id string, fields map[string]any) (*domain.Row, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	body, err := jsonBody(api.RowCreateRequest{ID: id, Data: fields})
	if err != nil {
		return nil, &store.ValidationError{Message: fmt.Sprintf("encode row: %v", err)}
	}

	var row domain.Row
	op := "create " + table
	if err := c.do(ctx, op, http.MethodPost, c.endpoint(nil, "v1", "tables", table, "rows"), body, "application/json", &row, rowErrors(table)); err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteRow deletes a row.
func (c *Client) DeleteRow(ctx context.Context, table, id string) error {
	op := fmt.Sprintf("delete %s/%s", table, id)
	return c.do(ctx, op, http.MethodDelete, c.endpoint(nil, "v1", "tables", table, "rows", id), http.NoBody, "", nil, rowErrors(table))
}
