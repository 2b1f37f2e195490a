package controllers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"productapi/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

func (api *API) GetTags(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	order := c.Query("order")
	orderBy := c.Query("order_by")

	name := c.Query("name")
	slug := c.Query("slug")
	active := c.Query("active")

	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = 20
	}

	if strings.ToUpper(order) != "ASC" && strings.ToUpper(order) != "DESC" {
		order = "DESC"
	}

	mapOrderBy := map[string]string{
		"id":         "id",
		"name":       "name",
		"slug":       "slug",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	if val, ok := mapOrderBy[orderBy]; ok {
		orderBy = val
	} else {
		orderBy = "updated_at"
	}

	countQ := `SELECT COUNT(1) FROM tags
		WHERE NOT deleted`
	selectQ := `SELECT
			id, name, slug, active,
			created_at, updated_at
		FROM tags
		WHERE NOT deleted`

	var tagList models.TagList
	var tags []models.Tag
	var err error

	filterQ, stms := getFilterTag(name, slug, active)

	selectQ = selectQ + filterQ
	countQ = countQ + filterQ

	offset := (page - 1) * limit
	pagination := fmt.Sprintf(" LIMIT %d OFFSET %d ", limit, offset)
	orderVal := fmt.Sprintf(" ORDER BY %s %s", orderBy, order)

	log.Println(selectQ + orderVal + pagination)

	rows, err := api.Db.Query(selectQ+orderVal+pagination, stms...)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer rows.Close()

	for rows.Next() {
		var tag models.Tag
		var name, slug sql.NullString
		err = rows.Scan(&tag.Id, &name, &slug, &tag.Active, &tag.CreatedAt, &tag.UpdatedAt)
		if err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		tag.Name = name.String
		tag.Slug = slug.String

		tags = append(tags, tag)
	}

	tagList.Total, err = api.GetTotal(countQ, stms)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	tagList.Tags = tags
	tagList.Limit = limit
	tagList.Page = page

	c.JSON(http.StatusOK, tagList)
}

func (api *API) UpsertTags(c *gin.Context) {
	var payload models.UpsertTagRequest

	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	tags := payload.Data
	if len(tags) == 0 {
		sendError(c, http.StatusBadRequest, "missing-tags")
		return
	}

	var errTags []models.RowError
	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	for i, tag := range tags {
		if _, err := uuid.FromString(tag.Id); err != nil {
			tag.Id = uuid.Must(uuid.NewV4()).String()
		}

		if err := validateTag(tag); err != nil {
			errTags = append(errTags, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		if tag.Slug == "" {
			tag.Slug = slugify(tag.Name)
		}

		slug, err := ensureSlug(tx, "tags", tag.Slug, tag.Id)
		if err != nil {
			errTags = append(errTags, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		tag.Slug = slug

		if _, err := tx.Exec(`
		INSERT INTO tags
		(id, name, slug, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		name = $2, slug = $3, active = $4, updated_at = CURRENT_TIMESTAMP, deleted = false
		`, tag.Id, tag.Name, tag.Slug, tag.Active); err != nil {
			log.Println(err)
			errTags = append(errTags, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
	}

	code := http.StatusInternalServerError
	obj := gin.H{"message": "error", "details": errTags}

	if len(errTags) == 0 {
		if err := tx.Commit(); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		code = http.StatusOK
		obj = gin.H{"message": "success", "total": len(tags)}
	}

	c.JSON(code, obj)
}

func (api *API) DeleteTags(c *gin.Context) {
	api.BatchDeletes(c, "tags")
}

func validateTag(tag models.Tag) error {

	if tag.Name == "" {
		return errors.New("missing-name")
	}

	return nil
}

func getFilterTag(name, slug, active string) (filterQ string, stms []interface{}) {
	if name != "" {
		filterQ = fmt.Sprintf(" AND name ILIKE $%d", len(stms)+1)
		stms = append(stms, "%"+name+"%")
	}

	if slug != "" {
		filterQ += fmt.Sprintf(" AND slug = $%d", len(stms)+1)
		stms = append(stms, slug)
	}

	if v, err := strconv.ParseBool(active); err == nil {
		filterQ += fmt.Sprintf(" AND active = $%d", len(stms)+1)
		stms = append(stms, v)
	}

	return
}
