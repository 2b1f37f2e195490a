package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"productapi/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"gotest.tools/assert"
)

func TestGetBrands(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.Equal(t, nil, err)

	api := NewAPI()
	api.Db = db

	var genericResp GenericResponse

	mockID := "63eb226a-d612-412b-b8d4-a3e17b7d2226"
	label := []string{"id", "name", "slug", "description", "created_at", "updated_at"}

	// err select (500)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	dbMock.ExpectQuery("SELECT id.*").WillReturnError(fmt.Errorf("err-select"))

	req, _ := http.NewRequest("GET", "", nil)
	c.Request = req
	api.GetBrands(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "err-select", genericResp.Message)

	// err count (500)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)

	dbMock.ExpectQuery("SELECT id.*").
		WillReturnRows(sqlmock.NewRows(label).AddRow(mockID, "Acme", "acme", nil, time.Now(), time.Now()))
	dbMock.ExpectQuery("SELECT COUNT.*").WillReturnError(fmt.Errorf("err-count"))

	req, _ = http.NewRequest("GET", "", nil)
	c.Request = req
	api.GetBrands(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "err-count", genericResp.Message)

	// 200
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)

	dbMock.ExpectQuery("SELECT id.*").WithArgs("acme").
		WillReturnRows(sqlmock.NewRows(label).AddRow(mockID, "Acme", "acme", "tools", time.Now(), time.Now()))
	dbMock.ExpectQuery("SELECT COUNT.*").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	req, _ = http.NewRequest("GET", "?slug=acme", nil)
	c.Request = req
	api.GetBrands(c)

	var resp models.BrandList
	err = json.NewDecoder(w.Body).Decode(&resp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, int(resp.Total))
	assert.Equal(t, 1, len(resp.Brands))
	assert.Equal(t, "Acme", resp.Brands[0].Name)
	assert.Equal(t, "tools", resp.Brands[0].Description)
}

func TestUpsertBrands(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.Equal(t, nil, err)

	api := NewAPI()
	api.Db = db

	// nil request (400)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var genericResp GenericResponse

	req, _ := http.NewRequest("POST", "", nil)
	c.Request = req
	api.UpsertBrands(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", genericResp.Message)

	// bad request (400)
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload := parsePayload(models.UpsertBrandRequest{})
	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.UpsertBrands(c)

	err = json.NewDecoder(w.Body).Decode(&genericResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing-brands", genericResp.Message)

	// brands validation & insert failure (500)
	respErrors := struct {
		Message string            `json:"message"`
		Details []models.RowError `json:"details"`
	}{}
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	mockID := "63eb226a-d612-412b-b8d4-a3e17b7d2226"
	brands := models.UpsertBrandRequest{Data: []models.Brand{
		{},
		{Id: mockID, Name: "Acme", Description: "tools"},
	}}
	payload = parsePayload(brands)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT EXISTS.*").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	dbMock.ExpectExec("INSERT INTO brands.*").WillReturnError(fmt.Errorf("err-insert"))
	dbMock.ExpectRollback()

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.UpsertBrands(c)

	err = json.NewDecoder(w.Body).Decode(&respErrors)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", respErrors.Message)
	assert.Equal(t, 2, len(respErrors.Details))
	assert.Equal(t, "missing-name", respErrors.Details[0].Message)
	assert.Equal(t, "err-insert", respErrors.Details[1].Message)

	// 200
	respSuccess := struct {
		Message string `json:"message"`
		Total   int    `json:"total"`
	}{}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	brands = models.UpsertBrandRequest{Data: []models.Brand{
		{Id: mockID, Name: "Acme", Description: "tools"},
	}}
	payload = parsePayload(brands)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery("SELECT EXISTS.*").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	dbMock.ExpectExec("INSERT INTO brands.*").
		WithArgs(mockID, "Acme", "acme", "tools").
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.UpsertBrands(c)

	err = json.NewDecoder(w.Body).Decode(&respSuccess)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", respSuccess.Message)
	assert.Equal(t, 1, respSuccess.Total)
}

func TestDeleteBrands(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.Equal(t, nil, err)

	api := NewAPI()
	api.Db = db

	mockID := "63eb226a-d612-412b-b8d4-a3e17b7d2226"

	// brand still on a live product (400)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	payload := parsePayload(models.BatchDeleteRequest{Data: []string{mockID}})

	dbMock.ExpectQuery("SELECT EXISTS.*").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	req, _ := http.NewRequest("POST", "", payload)
	c.Request = req
	api.DeleteBrands(c)

	var rowResp models.RowResponseError

	err = json.NewDecoder(w.Body).Decode(&rowResp)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, len(rowResp.Detail))
	assert.Equal(t, "conflict-id", rowResp.Detail[0].Message)

	// 200
	reqData := models.BatchDeleteRequest{Data: []string{mockID}}
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	payload = parsePayload(reqData)

	dbMock.ExpectQuery("SELECT EXISTS.*").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	dbMock.ExpectBegin()
	dbMock.ExpectExec("UPDATE brands.*").WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	req, _ = http.NewRequest("POST", "", payload)
	c.Request = req
	api.DeleteBrands(c)

	var respOk map[string]string

	err = json.NewDecoder(w.Body).Decode(&respOk)
	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", respOk["message"])
}
