package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type SortOptions struct {
	Field     string
	Direction string
}

type PaginationRequest struct {
	Page  int
	Limit int
}

func (p PaginationRequest) normalize() PaginationRequest {
	if p.Page < 1 {
		p.Page = 1
	}

	if p.Limit < 1 {
		p.Limit = 10
	}

	return p
}

var sortFields = map[string]string{
	"name":      "p.name",
	"price":     "p.price",
	"createdAt": "p.created_at",
}

type Assembler struct {
	db *sql.DB
}

func NewAssembler(db *sql.DB) *Assembler {
	return &Assembler{db: db}
}

func (a *Assembler) Count(ctx context.Context, preds []Predicate) (int, error) {
	where, args := buildWhere(preds)

	var total int
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM products p"+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return total, nil
}

// FetchIds returns the ids of the requested page, ordered by the whitelisted
// sort field with p.id as tie-break so identical sort values page stably.
func (a *Assembler) FetchIds(ctx context.Context, preds []Predicate, sort SortOptions, page PaginationRequest) ([]string, error) {
	where, args := buildWhere(preds)

	field, ok := sortFields[sort.Field]
	if !ok {
		field = "p.created_at"
	}

	dir := strings.ToUpper(sort.Direction)
	if dir != "ASC" && dir != "DESC" {
		dir = "DESC"
	}

	page = page.normalize()
	offset := (page.Page - 1) * page.Limit

	q := "SELECT p.id FROM products p" + where +
		fmt.Sprintf(" ORDER BY %s %s, p.id ASC", field, dir) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit, offset)

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch product ids: %w", err)
	}

	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("fetch product ids: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// buildWhere joins predicates with AND, numbering each clause's parameters
// sequentially across the whole list. No predicates, no WHERE.
func buildWhere(preds []Predicate) (string, []interface{}) {
	if len(preds) == 0 {
		return "", nil
	}

	var parts []string
	var args []interface{}

	for _, p := range preds {
		nums := make([]interface{}, len(p.Params))
		for i := range p.Params {
			nums[i] = len(args) + i + 1
		}

		parts = append(parts, fmt.Sprintf(p.Clause, nums...))
		args = append(args, p.Params...)
	}

	return " WHERE " + strings.Join(parts, " AND "), args
}
