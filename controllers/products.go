package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"productapi/catalog"
	"productapi/models"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func (api *API) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filters := catalog.FilterOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		TagIds:   splitList(c.Query("tag_ids")),
	}

	if v, err := decimal.NewFromString(c.Query("min_price")); err == nil {
		filters.MinPrice = &v
	}

	if v, err := decimal.NewFromString(c.Query("max_price")); err == nil {
		filters.MaxPrice = &v
	}

	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		filters.Featured = &v
	}

	if v, err := strconv.ParseBool(c.Query("published")); err == nil {
		filters.Published = &v
	}

	sort := catalog.SortOptions{
		Field:     c.Query("sort_by"),
		Direction: c.Query("order"),
	}

	asExcel, _ := strconv.ParseBool(c.Query("export_as_excel"))

	productPage, err := api.Catalog.ListProducts(c.Request.Context(), filters, sort,
		catalog.PaginationRequest{Page: page, Limit: limit})
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if asExcel {
		handleExcelProducts(c, productPage.Data)
		return
	}

	c.JSON(http.StatusOK, productPage)
}

func (api *API) UpsertProducts(c *gin.Context) {
	var payload models.UpsertProductRequest

	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	products := payload.Data
	if len(products) == 0 {
		sendError(c, http.StatusBadRequest, "missing-products")
		return
	}

	var errProducts []models.RowError
	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	for i, product := range products {
		if _, err := uuid.FromString(product.Id); err != nil {
			product.Id = uuid.Must(uuid.NewV4()).String()
		}

		if err := validateProduct(product); err != nil {
			errProducts = append(errProducts, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		if product.Slug == "" {
			product.Slug = slugify(product.Name)
		}

		slug, err := ensureSlug(tx, "products", product.Slug, product.Id)
		if err != nil {
			errProducts = append(errProducts, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		product.Slug = slug

		var salePrice, brandId interface{}
		if product.SalePrice != nil {
			salePrice = *product.SalePrice
		}
		if product.BrandId != "" {
			brandId = product.BrandId
		}

		if _, err := tx.Exec(`
		INSERT INTO products
		(id, name, slug, description, price, sale_price, sale_starts_at, sale_ends_at,
			stock, featured, published, meta_title, meta_description, category_id, brand_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		name = $2, slug = $3, description = $4, price = $5, sale_price = $6,
		sale_starts_at = $7, sale_ends_at = $8, stock = $9, featured = $10, published = $11,
		meta_title = $12, meta_description = $13, category_id = $14, brand_id = $15,
		updated_at = CURRENT_TIMESTAMP, deleted = false
		`, product.Id, product.Name, product.Slug, product.Description, product.Price,
			salePrice, product.SaleStartsAt, product.SaleEndsAt, product.Stock,
			product.Featured, product.Published, product.MetaTitle, product.MetaDescription,
			product.CategoryId, brandId); err != nil {
			log.Println(err)
			errProducts = append(errProducts, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		// a tag_ids array on the row replaces the whole junction set
		if product.TagIds == nil {
			continue
		}

		if _, err := tx.Exec(`DELETE FROM product_tags WHERE product_id = $1`, product.Id); err != nil {
			log.Println(err)
			errProducts = append(errProducts, models.RowError{Row: i + 1, Message: err.Error()})
			continue
		}

		if len(product.TagIds) > 0 {
			if _, err := tx.Exec(`
			INSERT INTO product_tags (product_id, tag_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
			`, product.Id, pq.Array(product.TagIds)); err != nil {
				log.Println(err)
				errProducts = append(errProducts, models.RowError{Row: i + 1, Message: err.Error()})
				continue
			}
		}
	}

	code := http.StatusInternalServerError
	obj := gin.H{"message": "error", "details": errProducts}

	if len(errProducts) == 0 {
		if err := tx.Commit(); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}

		code = http.StatusOK
		obj = gin.H{"message": "success", "total": len(products)}
	}

	c.JSON(code, obj)
}

func (api *API) DeleteProducts(c *gin.Context) {
	api.BatchDeletes(c, "products")
}

func handleExcelProducts(c *gin.Context, products []models.Product) {
	if len(products) == 0 {
		sendError(c, http.StatusNotFound, "products-not-found")
		return
	}

	f := excelize.NewFile()

	sheet := "List Products"
	f.NewSheet(sheet)
	// delete default sheet
	f.DeleteSheet("Sheet1")

	err := f.SetColWidth(sheet, "A", "G", 30)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	headerStyle, err := f.NewStyle(s1)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	dataStyle, err := f.NewStyle(s2)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	streamWriter, err := f.NewStreamWriter(sheet)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err = streamWriter.SetRow("A1", []interface{}{
		excelize.Cell{StyleID: headerStyle, Value: "Name"},
		excelize.Cell{StyleID: headerStyle, Value: "Category"},
		excelize.Cell{StyleID: headerStyle, Value: "Brand"},
		excelize.Cell{StyleID: headerStyle, Value: "Price"},
		excelize.Cell{StyleID: headerStyle, Value: "Sale Price"},
		excelize.Cell{StyleID: headerStyle, Value: "Stock"},
		excelize.Cell{StyleID: headerStyle, Value: "Created At"}}); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	loc, _ := time.LoadLocation("Asia/Jakarta")

	for n, product := range products {
		categoryName := ""
		if product.Category != nil {
			categoryName = product.Category.Name
		}

		brandName := "-"
		if product.Brand != nil {
			brandName = product.Brand.Name
		}

		salePrice := "-"
		if product.SalePrice != nil {
			salePrice = fmt.Sprintf("$%s", humanize.Commaf(product.SalePrice.InexactFloat64()))
		}

		row := make([]interface{}, 7)
		row[0] = excelize.Cell{StyleID: dataStyle, Value: product.Name}
		row[1] = excelize.Cell{StyleID: dataStyle, Value: categoryName}
		row[2] = excelize.Cell{StyleID: dataStyle, Value: brandName}
		row[3] = excelize.Cell{StyleID: dataStyle, Value: fmt.Sprintf("$%s", humanize.Commaf(product.Price.InexactFloat64()))}
		row[4] = excelize.Cell{StyleID: dataStyle, Value: salePrice}
		row[5] = excelize.Cell{StyleID: dataStyle, Value: product.Stock}
		row[6] = excelize.Cell{StyleID: dataStyle, Value: product.CreatedAt.In(loc).Format("2006-01-02 15:04:05")}

		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err = streamWriter.SetRow(cell, row); err != nil {
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := streamWriter.Flush(); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	fileName := fmt.Sprintf("report_products_%s.xlsx", time.Now().In(loc).Format("20060102_150405"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename=\""+fileName+"\"")

	if _, err := f.WriteTo(c.Writer); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

}

func validateProduct(product models.Product) error {

	if product.Name == "" {
		return errors.New("missing-name")
	}

	if _, err := uuid.FromString(product.CategoryId); err != nil {
		return errors.New("invalid-category-id")
	}

	if product.BrandId != "" {
		if _, err := uuid.FromString(product.BrandId); err != nil {
			return errors.New("invalid-brand-id")
		}
	}

	if product.Price.IsNegative() {
		return errors.New("invalid-price")
	}

	if product.Stock < 0 {
		return errors.New("invalid-stock")
	}

	return nil
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}
