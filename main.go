package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "emargement-backend/docs"
	"emargement-backend/internal/attendance"
	"emargement-backend/internal/platform/auth"
	"emargement-backend/internal/platform/config"
	"emargement-backend/internal/platform/db"
	"emargement-backend/internal/platform/logging"
	"emargement-backend/internal/platform/metrics"
)

// @title                       Emargement API
// @version                     1.0
// @description                 Attendance signature capture with one signature per learner, session and day.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

// stores はドライバごとに選んだ永続化先
type stores struct {
	records  attendance.Store
	accounts auth.AccountStore
	close    func() error
}

func main() {
	// 設定読み込み
	path := config.DefaultPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		path = p
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		panic(err)
	}

	logging.Init("emargement", cfg.Log.Level)
	log := logging.Logger
	log.Infof("mode:%s version:%s driver:%s", cfg.Mode, cfg.Version, cfg.DB.Driver)

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("invalid attendance timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer func() {
		if err := st.close(); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()

	// 認証まわり
	tokens := auth.NewJWT([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	limiter, err := auth.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, cfg.Auth.ClientIPHeader)
	if err != nil {
		log.WithError(err).Fatal("failed to build rate limiter")
	}
	defer limiter.Close()

	m := metrics.NewService()

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.RequestLogger(), gin.Recovery(), m.Middleware())
	_ = r.SetTrustedProxies(nil)

	if len(cfg.CORS.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logging.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", logging.HeaderRequestID, "Retry-After"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ヘルス / メトリクス / API ドキュメント
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))
	if cfg.Mode == config.ModeDev {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// /api
	api := r.Group("/api")
	// 出席履歴が残る id は別人に渡さない
	accounts := auth.NewService(st.accounts, tokens, auth.WithIDInUse(st.records.HasLearner))
	auth.RegisterRoutes(api, accounts, tokens, limiter.Middleware())
	attendance.RegisterRoutes(api, attendance.NewService(st.records, tokens, attendance.Options{
		Location:           loc,
		MinSignatureLength: cfg.Attendance.MinSignatureLength,
		WriteTimeout:       cfg.Attendance.WriteTimeout,
		Observer:           m,
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Server.Certificate.Cert != "" && cfg.Server.Certificate.Key != "" {
			// TLS設定（config/tls/<mode>/ 配下）
			certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Server.Certificate.Key)
			log.Infof("listening on https://%s", srv.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Infof("listening on http://%s", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.DB.Driver {
	case config.DriverMySQL:
		conn, err := db.Connect(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		logging.Logger.Infof("connected to DB: %s", cfg.DB.DBName)
		return &stores{
			records:  attendance.NewSQLStore(conn),
			accounts: auth.NewStore(conn),
			close:    conn.Close,
		}, nil

	case config.DriverPostgres:
		gdb, err := db.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, err
		}
		records := attendance.NewGormStore(gdb)
		accounts := auth.NewGormStore(gdb)
		if err := errors.Join(records.AutoMigrate(), accounts.AutoMigrate()); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		logging.Logger.Infof("connected to postgres: %s", cfg.DB.DBName)
		return &stores{records: records, accounts: accounts, close: sqlDB.Close}, nil

	case config.DriverMemory:
		logging.Logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			records:  attendance.NewMemoryStore(),
			accounts: auth.NewMemoryStore(),
			close:    func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DB.Driver)
	}
}
