package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductPage struct {
	Data []Product      `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type PaginationMeta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type Product struct {
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Id              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price,omitempty"`
	SaleStartsAt    *time.Time       `json:"sale_starts_at,omitempty"`
	SaleEndsAt      *time.Time       `json:"sale_ends_at,omitempty"`
	Stock           int              `json:"stock"`
	Featured        bool             `json:"featured"`
	Published       bool             `json:"published"`
	MetaTitle       string           `json:"meta_title"`
	MetaDescription string           `json:"meta_description"`
	CategoryId      string           `json:"category_id"`
	BrandId         string           `json:"brand_id,omitempty"`
	Category        *Category        `json:"category,omitempty"`
	Brand           *Brand           `json:"brand,omitempty"`
	Tags            []Tag            `json:"tags"`
	Variants        []Variant        `json:"variants"`
	Images          []Image          `json:"images"`
	Attributes      []AttributeValue `json:"attributes"`
	TagIds          []string         `json:"tag_ids,omitempty"`
}

type Variant struct {
	Id        string          `json:"id"`
	ProductId string          `json:"product_id"`
	Name      string          `json:"name"`
	Sku       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type Image struct {
	Id        string `json:"id"`
	ProductId string `json:"product_id"`
	Url       string `json:"url"`
	AltText   string `json:"alt_text"`
	Position  int    `json:"position"`
}

type AttributeValue struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type UpsertProductRequest struct {
	Data []Product `json:"data"`
}
