package models

import "time"

type TagList struct {
	Tags  []Tag `json:"tags"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int32 `json:"total"`
}

type Tag struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
}

type UpsertTagRequest struct {
	Data []Tag `json:"data"`
}
