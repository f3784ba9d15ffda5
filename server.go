package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/controllers"
	"bitbucket.org/mmdatafocus/pos_backend/directives"
	"bitbucket.org/mmdatafocus/pos_backend/graph"
	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/store"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AddAllowMethods("GET", "POST", "PUT", "OPTIONS")
	c.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	c.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	return c
}

func customErrorLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"status": c.Writer.Status(),
			}).Error(e.Error())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "route not found", "code": models.ErrNotFound.Code})
}

// Defining the Graphql handler
func graphqlHandler(service workflow.Service, logger logrus.FieldLogger) gin.HandlerFunc {
	h := graph.NewHandler(graph.Config{
		Resolvers:  &graph.Resolver{Service: service},
		Directives: graph.DirectiveRoot{HasRole: directives.HasRole},
	}, logger)
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func newRouter(cfg *config.Config, logger *logrus.Logger, service workflow.Service, refs middlewares.ReferenceSummaries, health controllers.HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(middlewares.TimeoutMiddleware(cfg.ServerTimeout))
	r.Use(customErrorLogger(logger))
	controllers.RegisterRoutes(r, controllers.NewTransactionController(service, logger), cfg.Auth.Secret, health)

	gql := r.Group("/query", middlewares.AuthMiddleware(cfg.Auth.Secret), middlewares.RequireActor(), middlewares.LoaderMiddleware(refs))
	query := graphqlHandler(service, logger)
	gql.POST("", query)
	gql.GET("", query)

	r.NoRoute(customNotFoundHandler)
	return r
}

func newWorkflow(cfg *config.Config, db *gorm.DB, rdb *redis.Client, locks workflow.Locker, publisher workflow.SettlementPublisher, logger *logrus.Logger) *workflow.TransactionWorkflow {
	return workflow.NewTransactionWorkflow(workflow.Dependencies{
		Transactions: store.NewTransactionStore(db),
		Preferences:  store.NewPreferenceStore(db, rdb, cfg.Redis.CacheTTL, logger),
		References:   store.NewReferenceResolver(db),
		Numbers:      store.NewNumberSequence(db, rdb, logger),
		Locker:       locks,
		Publisher:    publisher,
		Logger:       logger,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithField("field", "config").Fatal(err.Error())
	}
	logger := config.NewLogger(cfg.LogLevel)

	// Cloud Run sends SIGTERM on revision shutdown.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	db, err := config.ConnectDatabaseWithRetry(sigCtx, cfg)
	if err != nil {
		logger.WithField("field", "Connecting to Database").Fatal(err.Error())
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if os.Getenv("SKIP_MIGRATIONS") != "true" {
		if err := models.MigrateTable(db); err != nil {
			logger.WithField("field", "migrations").Fatal(err.Error())
		}
	} else {
		logger.WithField("field", "migrations").Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	rdb, lockClient, err := config.ConnectRedisWithRetry(sigCtx, cfg)
	if err != nil {
		logger.WithField("field", "Connecting to Redis").Fatal(err.Error())
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var locks workflow.Locker = workflow.NewKeyedMutex()
	if lockClient != nil {
		locks = workflow.NewRedisLocker(lockClient, cfg.Redis.LockTTL, cfg.Redis.LockRetry, cfg.Redis.LockBackoff, logger)
	} else {
		logger.Warn("redis disabled; payment locks are process-local")
	}

	var publisher workflow.SettlementPublisher = workflow.NewLogPublisher(logger)
	psClient, err := config.NewPubSubClient(sigCtx, cfg)
	if err != nil {
		logger.WithField("field", "pubsub").Error(err.Error())
	}
	if psClient != nil {
		defer psClient.Close()
		p := workflow.NewPubSubPublisher(psClient, cfg.PubSub.Topic)
		defer p.Stop()
		publisher = p
	}

	wf := newWorkflow(cfg, db, rdb, locks, publisher, logger)
	health := func(ctx context.Context) error { return store.Health(ctx, db, rdb) }

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(cfg, logger, wf, store.NewReferenceResolver(db), health),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()
	logger.WithField("port", cfg.Port).Info("server started")

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithField("field", "http").Error(err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithField("field", "shutdown").Error(err.Error())
	}
}
