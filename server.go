package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warungdata/hpp_backend/config"
	"github.com/warungdata/hpp_backend/hpp"
	"github.com/warungdata/hpp_backend/models"
	"github.com/warungdata/hpp_backend/utils"
	"github.com/warungdata/hpp_backend/workflow"
)

const defaultPort = "8080"

// Unfiltered item listings are served from a short-lived Redis cache.
// Best-effort only: every helper is a no-op while Redis is down, and any
// write path that touches items drops the key.
const (
	itemsCacheKey = "cache:items"
	itemsCacheTTL = 30 * time.Second
)

func invalidateItemsCache() {
	_ = config.RemoveRedisKey(itemsCacheKey)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// correlationMiddleware attaches a per-request correlation id, taken from the
// x-correlation-id header when the caller supplies one.
func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// customErrorLogger logs only requests that attached errors, tagged with the
// request's correlation id so log lines can be tied back to a caller.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			entry := logrus.NewEntry(logger)
			if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
				entry = entry.WithField("correlationId", cid)
			}
			entry.Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

type computeRequest struct {
	Lines      []hpp.CostLine       `json:"lines"`
	FixedCosts []hpp.FixedCostEntry `json:"fixed_costs"`
	Forecast   hpp.SalesForecast    `json:"forecast"`
}

func computeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req computeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		result := hpp.Aggregate(req.Lines, req.FixedCosts, req.Forecast)
		c.JSON(http.StatusOK, gin.H{
			"result":      result,
			"price_tiers": hpp.PriceTiers(result.TotalCost),
		})
	}
}

type priceCheckRequest struct {
	TotalCost     decimal.Decimal `json:"total_cost"`
	ProposedPrice decimal.Decimal `json:"proposed_price"`
}

func priceCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req priceCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, hpp.EvaluateCustomPrice(req.TotalCost, req.ProposedPrice))
	}
}

type purchasesRequest struct {
	Items            []workflow.IncomingLineItem `json:"items" binding:"required"`
	Destination      workflow.Destination        `json:"destination" binding:"required"`
	FallbackCategory string                      `json:"fallback_category"`
	Note             string                      `json:"note"`
}

func purchasesHandler(store workflow.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req purchasesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		plan, err := workflow.ReconcileBatch(c.Request.Context(), store, req.Items, workflow.ReconcilePolicy{
			Destination:      req.Destination,
			FallbackCategory: req.FallbackCategory,
			Note:             req.Note,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, plan)
	}
}

// receiptHandler accepts the raw extraction-provider payload and funnels it
// through the same reconciliation path as manual entry.
func receiptHandler(store workflow.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, err)
			return
		}
		lines, err := workflow.ParseVisionItems(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		policy := workflow.ReconcilePolicy{
			Destination:      workflow.Destination(c.DefaultQuery("destination", string(workflow.DestinationRawMaterial))),
			FallbackCategory: c.Query("fallback_category"),
			Note:             "receipt import",
		}
		plan, err := workflow.ReconcileBatch(c.Request.Context(), store, lines, policy)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, plan)
	}
}

func importXlsxHandler(store workflow.CatalogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, err)
			return
		}
		if !strings.HasSuffix(fileHeader.Filename, ".xlsx") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type: only .xlsx files are allowed"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		policy := workflow.ReconcilePolicy{
			Destination:      workflow.Destination(c.DefaultPostForm("destination", string(workflow.DestinationRawMaterial))),
			FallbackCategory: c.PostForm("fallback_category"),
			Note:             "xlsx import " + fileHeader.Filename,
		}
		plan, err := workflow.ImportPurchasesFromXlsx(c.Request.Context(), store, file, policy)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, plan)
	}
}

func registerCatalogRoutes(api *gin.RouterGroup) {
	api.GET("/items", func(c *gin.Context) {
		var name *string
		if v := c.Query("name"); v != "" {
			name = &v
		}
		var itemType *models.ItemType
		if v := c.Query("type"); v != "" {
			t := models.ItemType(v)
			itemType = &t
		}
		cacheable := name == nil && itemType == nil
		if cacheable {
			if cached, ok, err := config.GetRedisValue(itemsCacheKey); err == nil && ok {
				c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			}
		}
		items, err := models.GetItems(c.Request.Context(), name, itemType)
		if err != nil {
			respondError(c, err)
			return
		}
		if cacheable {
			if raw, err := json.Marshal(items); err == nil {
				_ = config.SetRedisValue(itemsCacheKey, string(raw), itemsCacheTTL)
			}
		}
		c.JSON(http.StatusOK, items)
	})
	api.POST("/items", func(c *gin.Context) {
		var input models.NewItem
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		item, err := models.CreateItem(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusCreated, item)
	})
	api.GET("/items/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		item, err := models.GetItem(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})
	api.PUT("/items/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		var input models.NewItem
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		item, err := models.UpdateItem(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, item)
	})
	api.DELETE("/items/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		item, err := models.DeleteItem(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, item)
	})
	api.POST("/items/:id/toggle-active", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		var body struct {
			IsActive bool `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, err)
			return
		}
		item, err := models.ToggleActiveItem(c.Request.Context(), id, body.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusOK, item)
	})
	api.GET("/items/:id/movements", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		movements, err := models.GetStockMovements(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, movements)
	})
	api.POST("/stock-movements", func(c *gin.Context) {
		var input models.NewStockMovement
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		movement, err := models.CreateStockMovement(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateItemsCache()
		c.JSON(http.StatusCreated, movement)
	})

	api.GET("/categories", func(c *gin.Context) {
		var name *string
		if v := c.Query("name"); v != "" {
			name = &v
		}
		categories, err := models.GetItemCategories(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	})
	api.POST("/categories", func(c *gin.Context) {
		var input models.NewItemCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		category, err := models.CreateItemCategory(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	})
	api.PUT("/categories/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		var input models.NewItemCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		category, err := models.UpdateItemCategory(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	})
	api.DELETE("/categories/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		category, err := models.DeleteItemCategory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so the startup probe passes.
	// Until DB/Redis are ready, app endpoints return 503.
	r := gin.New()
	r.Use(correlationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; allow all otherwise.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	store := workflow.NewGormCatalogStore()
	api := r.Group("/api/v1")
	api.POST("/hpp/compute", computeHandler())
	api.POST("/hpp/price-check", priceCheckHandler())
	api.POST("/ingestion/purchases", purchasesHandler(store))
	api.POST("/ingestion/receipt", receiptHandler(store))
	api.POST("/ingestion/import-xlsx", importXlsxHandler(store))
	registerCatalogRoutes(api)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate runs DDL that can block tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
