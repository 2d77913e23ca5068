// Package api contains the API routes for the Tunely API
package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tunely/tunelyapi/internal/api/handlers"
	"github.com/tunely/tunelyapi/internal/api/middleware"
	"github.com/tunely/tunelyapi/internal/config"
	"github.com/tunely/tunelyapi/internal/dart"
	"github.com/tunely/tunelyapi/internal/naver"
	"github.com/tunely/tunelyapi/internal/service"
	"github.com/tunely/tunelyapi/pkg/utils/response"
)

// SetupRoutes configures the routes for the API and returns the collector
// wiring so the cron service can share it
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*dart.Client, *service.CollectorService) {
	dartClient := dart.NewClient(cfg.DartBaseURL, cfg.DartAPIKey, redisClient)
	scraper := naver.NewScraper(cfg.NaverBaseURL)
	collectorService := service.NewCollectorService(db, dartClient, scraper)
	companyService := service.NewCompanyService(db, dartClient, collectorService)

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", indexRoute(cfg))

	// Company routes, partitioned by the caller-supplied user id
	companyHandler := handlers.NewCompanyHandler(companyService)
	companyGroup := api.Group("/companies")
	companyGroup.Use(middleware.UserIDMiddleware())
	companyGroup.GET("/search", companyHandler.SearchCompanies)
	companyGroup.POST("", companyHandler.RegisterCompany)
	companyGroup.GET("", companyHandler.GetCompanies)
	companyGroup.GET("/:id", companyHandler.GetCompany)
	companyGroup.GET("/:id/financials/:year/:quarter", companyHandler.GetFinancialDetail)
	companyGroup.POST("/:id/collect", companyHandler.CollectCompany)
	companyGroup.DELETE("/:id", companyHandler.DeleteCompany)

	return dartClient, collectorService
}

// indexRoute sets up the index route for the API
func indexRoute(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		message := fmt.Sprintf("%s %s", cfg.APIName, cfg.APIVersion)
		return response.SuccessResponse(c, message)
	}
}
