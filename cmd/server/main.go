package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mercatto/backoffice/internal/config"
	"github.com/mercatto/backoffice/internal/middleware"
	"github.com/mercatto/backoffice/internal/rir/entity"
	"github.com/mercatto/backoffice/internal/rir/handler"
	"github.com/mercatto/backoffice/internal/rir/repository"
	"github.com/mercatto/backoffice/internal/rir/service"
	"github.com/mercatto/backoffice/internal/shared/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting backoffice RIR service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.QualityLevel{},
		&entity.GroupQualityLevel{},
		&entity.SamplingPlanRange{},
		&entity.PurchaseOrder{},
		&entity.PurchaseOrderItem{},
		&entity.InspectionReport{},
		&entity.InspectionLine{},
	); err != nil {
		zapLogger.Warn("AutoMigrate RIR tables warning", zap.Error(err))
	}

	// One active report per purchase-order item: lines are hard-deleted with
	// their report, so a plain partial unique index enforces the guard.
	hardeningSQL := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_rir_lines_pedido_item ON rir_inspection_lines(pedido_item_id) WHERE pedido_item_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_rir_reports_data_inspecao ON rir_inspection_reports(data_inspecao)",
	}
	for _, sql := range hardeningSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}

	seedReferenceData(db, zapLogger)
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)

	nqaSvc := service.NewNQAService(repos.QualityLevel, repos.SamplingPlan)
	nqaSvc.SetCache(rdb)
	nqaSvc.SetLogger(zapLogger)

	inspectionSvc := service.NewInspectionService(repos.Inspection, repos.PO, nqaSvc)
	inspectionSvc.SetLogger(zapLogger)
	if cfg.Catalog.BaseURL != "" {
		inspectionSvc.SetProductGroupSource(catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout))
		zapLogger.Info("Product catalog client initialized", zap.String("base_url", cfg.Catalog.BaseURL))
	}

	handlers := handler.NewHandlers(inspectionSvc, nqaSvc, repos.PO)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// seedReferenceData inserts the NQA quality levels and the NQA 2,5
// general-level-II single-normal band table. Reference data is append-mostly
// configuration; seeding keeps a fresh database usable.
func seedReferenceData(db *gorm.DB, zapLogger *zap.Logger) {
	levelSeeds := []struct {
		ID, Codigo string
	}{
		{"nqa-010", "1,0"},
		{"nqa-025", "2,5"},
		{"nqa-040", "4,0"},
		{"nqa-065", "6,5"},
	}
	for _, ls := range levelSeeds {
		db.Exec(`INSERT INTO rir_quality_levels (id, codigo, nome, nivel_inspecao, is_default, ativo, created_at, updated_at)
			VALUES (?, ?, ?, 'II', ?, true, NOW(), NOW())
			ON CONFLICT (codigo) DO NOTHING`,
			ls.ID, ls.Codigo, "NQA "+ls.Codigo, ls.Codigo == entity.DefaultQualityLevelCode)
	}

	rangeSeeds := []struct {
		Seq                       int
		Inicial, Final, N, AC, RE int
	}{
		{1, 2, 8, 2, 0, 1},
		{2, 9, 15, 3, 0, 1},
		{3, 16, 25, 5, 0, 1},
		{4, 26, 50, 8, 0, 1},
		{5, 51, 90, 13, 1, 2},
		{6, 91, 150, 20, 1, 2},
		{7, 151, 280, 32, 2, 3},
		{8, 281, 500, 50, 3, 4},
		{9, 501, 1200, 80, 5, 6},
		{10, 1201, 3200, 125, 7, 8},
		{11, 3201, 10000, 200, 10, 11},
		{12, 10001, 35000, 315, 14, 15},
		{13, 35001, 150000, 500, 21, 22},
	}
	for _, rs := range rangeSeeds {
		id := fmt.Sprintf("nqa-025-r%02d", rs.Seq)
		db.Exec(`INSERT INTO rir_sampling_plan_ranges (id, quality_level_id, faixa_inicial, faixa_final, tamanho_amostra, ac, re, ativo, created_at, updated_at)
			VALUES (?, 'nqa-025', ?, ?, ?, ?, ?, true, NOW(), NOW())
			ON CONFLICT (id) DO NOTHING`, id, rs.Inicial, rs.Final, rs.N, rs.AC, rs.RE)
	}

	zapLogger.Info("Reference data seeded",
		zap.Int("quality_levels", len(levelSeeds)),
		zap.Int("nqa_025_ranges", len(rangeSeeds)),
	)
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		inspections := v1.Group("/inspections")
		{
			inspections.GET("", h.Inspection.ListReports)
			inspections.POST("", h.Inspection.CreateReport)
			inspections.GET("/purchase-order-items", h.Inspection.AvailableItems)
			inspections.GET("/quality-level", h.NQA.QualityLevelForGroup)
			inspections.GET("/sampling-plan", h.NQA.SamplingPlanForLot)
			inspections.GET("/:id", h.Inspection.GetReport)
			inspections.PUT("/:id", h.Inspection.UpdateReport)
			inspections.DELETE("/:id", h.Inspection.DeleteReport)
		}

		orders := v1.Group("/purchase-orders")
		{
			orders.GET("", h.PO.ListOrders)
			orders.GET("/:id", h.PO.GetOrder)
		}
	}
}
