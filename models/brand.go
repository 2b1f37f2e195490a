package models

import "time"

type BrandList struct {
	Brands []Brand `json:"brands"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
	Total  int32   `json:"total"`
}

type Brand struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
}

type UpsertBrandRequest struct {
	Data []Brand `json:"data"`
}
