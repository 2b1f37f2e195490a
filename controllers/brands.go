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

func (api *API) GetBrands(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	order := c.Query("order")
	orderBy := c.Query("order_by")

	name := c.Query("name")
	slug := c.Query("slug")

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

	countQ := `SELECT COUNT(1) FROM brands
		WHERE NOT deleted`
	selectQ := `SELECT
			id, name, slug, description,
			created_at, updated_at
		FROM brands
		WHERE NOT deleted`

	var brandList models.BrandList
	var brands []models.Brand
	var err error

	filterQ, stms := getFilterBrand(name, slug)

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
		var brand models.Brand
		var name, slug, description sql.NullString
		err = rows.Scan(&brand.Id, &name, &slug, &description, &brand.CreatedAt, &brand.UpdatedAt)
		if err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		brand.Name = name.String
		brand.Slug = slug.String
		brand.Description = description.String

		brands = append(brands, brand)
	}

	brandList.Total, err = api.GetTotal(countQ, stms)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	brandList.Brands = brands
	brandList.Limit = limit
	brandList.Page = page

	c.JSON(http.StatusOK, brandList)
}

func (api *API) UpsertBrands(c *gin.Context) {
	var payload models.UpsertBrandRequest

	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	brands := payload.Data
	if len(brands) == 0 {
		sendError(c, http.StatusBadRequest, "missing-brands")
		return
	}

	var errBrands []models.RowError
	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	for i, brand := range brands {
		if _, err := uuid.FromString(brand.Id); err != nil {
			brand.Id = uuid.Must(uuid.NewV4()).String()
		}

		if err := validateBrand(brand); err != nil {
			errBrands = append(errBrands, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		if brand.Slug == "" {
			brand.Slug = slugify(brand.Name)
		}

		slug, err := ensureSlug(tx, "brands", brand.Slug, brand.Id)
		if err != nil {
			errBrands = append(errBrands, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		brand.Slug = slug

		if _, err := tx.Exec(`
		INSERT INTO brands
		(id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		name = $2, slug = $3, description = $4, updated_at = CURRENT_TIMESTAMP, deleted = false
		`, brand.Id, brand.Name, brand.Slug, brand.Description); err != nil {
			log.Println(err)
			errBrands = append(errBrands, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
	}

	code := http.StatusInternalServerError
	obj := gin.H{"message": "error", "details": errBrands}

	if len(errBrands) == 0 {
		if err := tx.Commit(); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		code = http.StatusOK
		obj = gin.H{"message": "success", "total": len(brands)}
	}

	c.JSON(code, obj)
}

func (api *API) DeleteBrands(c *gin.Context) {
	api.BatchDeletes(c, "brands")
}

func validateBrand(brand models.Brand) error {

	if brand.Name == "" {
		return errors.New("missing-name")
	}

	return nil
}

func getFilterBrand(name, slug string) (filterQ string, stms []interface{}) {
	if name != "" {
		filterQ = fmt.Sprintf(" AND name ILIKE $%d", len(stms)+1)
		stms = append(stms, "%"+name+"%")
	}

	if slug != "" {
		filterQ += fmt.Sprintf(" AND slug = $%d", len(stms)+1)
		stms = append(stms, slug)
	}

	return
}
