package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookify/internal/account"
	"bookify/internal/annotations"
	"bookify/internal/cache"
	"bookify/internal/catalog"
	"bookify/internal/microgenre"
	"bookify/internal/notify"
	"bookify/internal/session"
	"bookify/internal/shelf"
	synchub "bookify/internal/sync"
	"bookify/pkg/database"
	"bookify/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	srvCfg := utils.LoadServerConfig()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start the push transports first so binding errors surface early.
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(srvCfg.SyncAddr, hub)

	registry := notify.NewRegistry()
	notifySrv := notify.NewServer(srvCfg.NotifyAddr, registry, nil)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":           dbCfg.Path,
			"tcp_clients":  stats.TCPClients,
			"ws_clients":   stats.WSClients,
			"udp_clients":  len(registry.Snapshot()),
			"catalog_base": utils.BooksAPIBase(),
		})
	})

	// Catalog (public)
	catalogSvc := catalog.NewService(catalog.NewClient(utils.BooksAPIBase()), cache.NewStore(db), notifySrv)
	catalog.NewHandler(catalogSvc).RegisterRoutes(router.Group("/"))
	microgenre.NewHandler(catalogSvc).RegisterRoutes(router.Group("/"))

	// Session
	sessCfg := utils.LoadSessionConfig()
	tokenSvc := session.TokenService{
		Secret:   []byte(sessCfg.Secret),
		Issuer:   sessCfg.Issuer,
		Duration: sessCfg.Duration,
	}
	accountRepo := account.NewRepo(db)
	accountHandler := account.NewHandler(accountRepo, tokenSvc)
	accountHandler.RegisterPublicRoutes(router.Group("/"))

	// Protected routes
	protected := router.Group("/")
	protected.Use(session.Middleware(tokenSvc))

	accountHandler.RegisterRoutes(protected)
	shelf.NewHandler(shelf.NewRepo(db), hub).RegisterRoutes(protected)
	annotations.NewHandler(annotations.NewRepo(db)).RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    srvCfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifySrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP API server listening on %s", srvCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifySrv.Close(); err != nil {
		log.Printf("udp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
