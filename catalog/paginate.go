package catalog

import "productapi/models"

// Paginate derives page metadata from a total row count. It never touches
// the database, so callers can compute meta even for short-circuited runs.
func Paginate(total, page, limit int) models.PaginationMeta {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = 10
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
