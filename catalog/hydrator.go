package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"productapi/models"
)

type Hydrator struct {
	db *sql.DB
}

func NewHydrator(db *sql.DB) *Hydrator {
	return &Hydrator{db: db}
}

// Hydrate loads full products for the given ids, one batch query per
// relation, and returns them in the exact order of the id list. Ids that
// match no row are dropped silently.
func (h *Hydrator) Hydrate(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	byId, err := h.fetchProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	if err := h.attachTags(ctx, ids, byId); err != nil {
		return nil, err
	}

	if err := h.attachVariants(ctx, ids, byId); err != nil {
		return nil, err
	}

	if err := h.attachImages(ctx, ids, byId); err != nil {
		return nil, err
	}

	if err := h.attachAttributes(ctx, ids, byId); err != nil {
		return nil, err
	}

	if err := h.attachCategories(ctx, byId); err != nil {
		return nil, err
	}

	if err := h.attachBrands(ctx, byId); err != nil {
		return nil, err
	}

	// the id list carries the sort order, the map does not
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byId[id]; ok {
			products = append(products, *p)
		}
	}

	return products, nil
}

func (h *Hydrator) fetchProducts(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT
			p.id, p.name, p.slug, p.description, p.price, p.sale_price,
			p.sale_starts_at, p.sale_ends_at, p.stock, p.featured, p.published,
			p.meta_title, p.meta_description, p.category_id, p.brand_id,
			p.created_at, p.updated_at
		FROM products p
		WHERE p.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	defer rows.Close()

	byId := make(map[string]*models.Product, len(ids))

	for rows.Next() {
		var product models.Product
		var description, metaTitle, metaDescription, brandId sql.NullString
		var salePrice decimal.NullDecimal
		var saleStartsAt, saleEndsAt sql.NullTime

		err = rows.Scan(&product.Id, &product.Name, &product.Slug, &description,
			&product.Price, &salePrice, &saleStartsAt, &saleEndsAt, &product.Stock,
			&product.Featured, &product.Published, &metaTitle, &metaDescription,
			&product.CategoryId, &brandId, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("fetch products: %w", err)
		}

		product.Description = description.String
		product.MetaTitle = metaTitle.String
		product.MetaDescription = metaDescription.String
		product.BrandId = brandId.String

		if salePrice.Valid {
			product.SalePrice = &salePrice.Decimal
		}

		if saleStartsAt.Valid {
			product.SaleStartsAt = &saleStartsAt.Time
		}

		if saleEndsAt.Valid {
			product.SaleEndsAt = &saleEndsAt.Time
		}

		product.Tags = []models.Tag{}
		product.Variants = []models.Variant{}
		product.Images = []models.Image{}
		product.Attributes = []models.AttributeValue{}

		byId[product.Id] = &product
	}

	return byId, rows.Err()
}

func (h *Hydrator) attachTags(ctx context.Context, ids []string, byId map[string]*models.Product) error {
	rows, err := h.db.QueryContext(ctx, `SELECT
			pt.product_id, t.id, t.name, t.slug, t.active, t.created_at, t.updated_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id = ANY($1) AND NOT t.deleted
		ORDER BY t.name ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch product tags: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var productId string
		var tag models.Tag
		if err := rows.Scan(&productId, &tag.Id, &tag.Name, &tag.Slug, &tag.Active, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return fmt.Errorf("fetch product tags: %w", err)
		}

		if p, ok := byId[productId]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}

	return rows.Err()
}

func (h *Hydrator) attachVariants(ctx context.Context, ids []string, byId map[string]*models.Product) error {
	rows, err := h.db.QueryContext(ctx, `SELECT
			v.id, v.product_id, v.name, v.sku, v.price, v.stock
		FROM product_variants v
		WHERE v.product_id = ANY($1) AND NOT v.deleted
		ORDER BY v.name ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch product variants: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var variant models.Variant
		if err := rows.Scan(&variant.Id, &variant.ProductId, &variant.Name, &variant.Sku, &variant.Price, &variant.Stock); err != nil {
			return fmt.Errorf("fetch product variants: %w", err)
		}

		if p, ok := byId[variant.ProductId]; ok {
			p.Variants = append(p.Variants, variant)
		}
	}

	return rows.Err()
}

func (h *Hydrator) attachImages(ctx context.Context, ids []string, byId map[string]*models.Product) error {
	rows, err := h.db.QueryContext(ctx, `SELECT
			i.id, i.product_id, i.url, i.alt_text, i.position
		FROM product_images i
		WHERE i.product_id = ANY($1)
		ORDER BY i.position ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch product images: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var image models.Image
		var altText sql.NullString
		if err := rows.Scan(&image.Id, &image.ProductId, &image.Url, &altText, &image.Position); err != nil {
			return fmt.Errorf("fetch product images: %w", err)
		}

		image.AltText = altText.String

		if p, ok := byId[image.ProductId]; ok {
			p.Images = append(p.Images, image)
		}
	}

	return rows.Err()
}

func (h *Hydrator) attachAttributes(ctx context.Context, ids []string, byId map[string]*models.Product) error {
	rows, err := h.db.QueryContext(ctx, `SELECT
			pav.product_id, av.id, av.name, av.value
		FROM product_attribute_values pav
		JOIN attribute_values av ON av.id = pav.attribute_value_id
		WHERE pav.product_id = ANY($1)
		ORDER BY av.name ASC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch product attributes: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var productId string
		var attr models.AttributeValue
		if err := rows.Scan(&productId, &attr.Id, &attr.Name, &attr.Value); err != nil {
			return fmt.Errorf("fetch product attributes: %w", err)
		}

		if p, ok := byId[productId]; ok {
			p.Attributes = append(p.Attributes, attr)
		}
	}

	return rows.Err()
}

func (h *Hydrator) attachCategories(ctx context.Context, byId map[string]*models.Product) error {
	ids := collectIds(byId, func(p *models.Product) string { return p.CategoryId })
	if len(ids) == 0 {
		return nil
	}

	rows, err := h.db.QueryContext(ctx, `SELECT
			id, name, slug, description, parent_id, active, created_at, updated_at
		FROM categories
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}

	defer rows.Close()

	categories := map[string]models.Category{}

	for rows.Next() {
		var category models.Category
		var description, parentId sql.NullString
		if err := rows.Scan(&category.Id, &category.Name, &category.Slug, &description, &parentId, &category.Active, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}

		category.Description = description.String
		category.ParentId = parentId.String
		categories[category.Id] = category
	}

	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range byId {
		if category, ok := categories[p.CategoryId]; ok {
			c := category
			p.Category = &c
		}
	}

	return nil
}

func (h *Hydrator) attachBrands(ctx context.Context, byId map[string]*models.Product) error {
	ids := collectIds(byId, func(p *models.Product) string { return p.BrandId })
	if len(ids) == 0 {
		return nil
	}

	rows, err := h.db.QueryContext(ctx, `SELECT
			id, name, slug, description, created_at, updated_at
		FROM brands
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch brands: %w", err)
	}

	defer rows.Close()

	brands := map[string]models.Brand{}

	for rows.Next() {
		var brand models.Brand
		var description sql.NullString
		if err := rows.Scan(&brand.Id, &brand.Name, &brand.Slug, &description, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return fmt.Errorf("fetch brands: %w", err)
		}

		brand.Description = description.String
		brands[brand.Id] = brand
	}

	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range byId {
		if brand, ok := brands[p.BrandId]; ok {
			b := brand
			p.Brand = &b
		}
	}

	return nil
}

func collectIds(byId map[string]*models.Product, pick func(*models.Product) string) []string {
	var ids []string
	seen := map[string]bool{}

	for _, p := range byId {
		id := pick(p)
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}
