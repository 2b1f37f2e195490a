package routers

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"productapi/catalog"
	"productapi/controllers"
	"productapi/middlewares"
	"productapi/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func Route() *gin.Engine {
	router := gin.Default()
	router.Use(CORS())
	api := controllers.NewAPI()

	api.Db = newDB(nil)
	api.Db.SetConnMaxLifetime(5 * time.Minute)
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")

	api.Redis = redis.NewClient(&redis.Options{
		Addr: redisHost + ":" + redisPort,
		DB:   0,
	})

	api.Catalog = catalog.New(api.Db, catalog.Config{Search: searchMode()}, newLogger())

	router.POST("/api/login", api.Authenticate)
	router.POST("/api/register", api.Register)
	router.GET("/api/check-session", middlewares.Auth(api.Redis), api.CheckSession)
	router.GET("/api/refresh-session", middlewares.Auth(api.Redis), api.RefreshSession)
	router.GET("/api/logout", middlewares.Auth(api.Redis), api.Logout)
	router.POST("/api/forgot-password", api.ForgotPassword)
	router.GET("/api/verify-token/:token", api.VerifyTokenReset)
	router.POST("/api/reset-password/:token", api.UpdateUserReset)

	user := router.Group("/api/user")
	user.Use(middlewares.Auth(api.Redis))
	{
		user.GET("", api.GetUser)
		user.PUT("", api.UpdateUser)
	}

	auth := middlewares.Auth(api.Redis)
	admin := middlewares.RequireRole(string(models.Admin))

	products := router.Group("/api/products")
	{
		// reads serve the storefront, no session needed
		products.GET("", api.GetProducts)
		// batch upsert/delete
		products.POST("", auth, api.UpsertProducts)
		products.DELETE("", auth, admin, api.DeleteProducts)
	}

	categories := router.Group("/api/categories")
	{
		categories.GET("", api.GetCategories)
		// batch upsert/delete
		categories.POST("", auth, api.UpsertCategories)
		categories.DELETE("", auth, admin, api.DeleteCategories)
	}

	tags := router.Group("/api/tags")
	{
		tags.GET("", api.GetTags)
		// batch upsert/delete
		tags.POST("", auth, api.UpsertTags)
		tags.DELETE("", auth, admin, api.DeleteTags)
	}

	brands := router.Group("/api/brands")
	{
		brands.GET("", api.GetBrands)
		// batch upsert/delete
		brands.POST("", auth, api.UpsertBrands)
		brands.DELETE("", auth, admin, api.DeleteBrands)
	}
	return router
}

// CORS Cross Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, "+
			"Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func searchMode() catalog.SearchMode {
	if strings.EqualFold(os.Getenv("SEARCH_MODE"), "fulltext") {
		return catalog.SearchFullText
	}

	return catalog.SearchLike
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}

	return logger
}

func newDB(indb *sql.DB) *sql.DB {
	if indb != nil {
		return indb
	}
	connString := os.Getenv("DB_CONNECTION_STRING")
	if connString == "" {
		log.Fatal("Please provide DB_CONNECTION_STRING environment variable")
	}

	log.Println(connString)

	var err error
	conn, err := sql.Open("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to db with connection %s: %v", connString, err)
	}

	err = conn.Ping()
	if err != nil {
		log.Fatal(err)
	}

	return conn
}
