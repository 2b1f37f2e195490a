package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

type Resolver struct {
	db *sql.DB
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve turns a raw category token into canonical category ids. The token
// may hold several comma-separated segments; each segment is either an id
// taken verbatim or a term matched partially against category name and slug.
// Segments that match nothing are skipped, so an empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, token string) ([]string, error) {
	var ids []string
	seen := map[string]bool{}

	for _, segment := range strings.Split(token, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if _, err := uuid.FromString(segment); err == nil {
			if !seen[segment] {
				seen[segment] = true
				ids = append(ids, segment)
			}
			continue
		}

		var id string
		err := r.db.QueryRowContext(ctx, `SELECT id FROM categories
			WHERE (name ILIKE $1 OR slug ILIKE $1) AND NOT deleted
			ORDER BY name ASC LIMIT 1`, "%"+segment+"%").Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", segment, err)
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}
