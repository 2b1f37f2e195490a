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

func (api *API) GetCategories(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	order := c.Query("order")
	orderBy := c.Query("order_by")

	name := c.Query("name")
	slug := c.Query("slug")
	parentId := c.Query("parent_id")
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

	countQ := `SELECT COUNT(1) FROM categories
		WHERE NOT deleted`
	selectQ := `SELECT
			id, name, slug, description,
			parent_id, active, created_at, updated_at
		FROM categories
		WHERE NOT deleted`

	var categoryList models.CategoryList
	var categories []models.Category
	var err error

	filterQ, stms := getFilterCategory(name, slug, parentId, active)

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
		var category models.Category
		var name, slug, description, parentId sql.NullString
		err = rows.Scan(&category.Id, &name, &slug, &description, &parentId,
			&category.Active, &category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		category.Name = name.String
		category.Slug = slug.String
		category.Description = description.String
		category.ParentId = parentId.String

		categories = append(categories, category)
	}

	categoryList.Total, err = api.GetTotal(countQ, stms)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	categoryList.Categories = categories
	categoryList.Limit = limit
	categoryList.Page = page

	c.JSON(http.StatusOK, categoryList)
}

func (api *API) UpsertCategories(c *gin.Context) {
	var payload models.UpsertCategoryRequest

	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	categories := payload.Data
	if len(categories) == 0 {
		sendError(c, http.StatusBadRequest, "missing-categories")
		return
	}

	var errCategories []models.RowError
	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	for i, category := range categories {
		if _, err := uuid.FromString(category.Id); err != nil {
			category.Id = uuid.Must(uuid.NewV4()).String()
		}

		if err := validateCategory(category); err != nil {
			errCategories = append(errCategories, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		if category.Slug == "" {
			category.Slug = slugify(category.Name)
		}

		slug, err := ensureSlug(tx, "categories", category.Slug, category.Id)
		if err != nil {
			errCategories = append(errCategories, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		category.Slug = slug

		var parentId interface{}
		if category.ParentId != "" {
			parentId = category.ParentId
		}

		if _, err := tx.Exec(`
		INSERT INTO categories
		(id, name, slug, description, parent_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		name = $2, slug = $3, description = $4, parent_id = $5, active = $6,
		updated_at = CURRENT_TIMESTAMP, deleted = false
		`, category.Id, category.Name, category.Slug, category.Description,
			parentId, category.Active); err != nil {
			log.Println(err)
			errCategories = append(errCategories, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
	}

	code := http.StatusInternalServerError
	obj := gin.H{"message": "error", "details": errCategories}

	if len(errCategories) == 0 {
		if err := tx.Commit(); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		code = http.StatusOK
		obj = gin.H{"message": "success", "total": len(categories)}
	}

	c.JSON(code, obj)
}

func (api *API) DeleteCategories(c *gin.Context) {
	api.BatchDeletes(c, "categories")
}

func validateCategory(category models.Category) error {

	if category.Name == "" {
		return errors.New("missing-name")
	}

	if category.ParentId != "" {
		if _, err := uuid.FromString(category.ParentId); err != nil {
			return errors.New("invalid-parent-id")
		}

		if category.ParentId == category.Id {
			return errors.New("invalid-parent-id")
		}
	}

	return nil
}

func getFilterCategory(name, slug, parentId, active string) (filterQ string, stms []interface{}) {
	if name != "" {
		filterQ = fmt.Sprintf(" AND name ILIKE $%d", len(stms)+1)
		stms = append(stms, "%"+name+"%")
	}

	if slug != "" {
		filterQ += fmt.Sprintf(" AND slug = $%d", len(stms)+1)
		stms = append(stms, slug)
	}

	if _, err := uuid.FromString(parentId); err == nil {
		filterQ += fmt.Sprintf(" AND parent_id = $%d", len(stms)+1)
		stms = append(stms, parentId)
	}

	if v, err := strconv.ParseBool(active); err == nil {
		filterQ += fmt.Sprintf(" AND active = $%d", len(stms)+1)
		stms = append(stms, v)
	}

	return
}
