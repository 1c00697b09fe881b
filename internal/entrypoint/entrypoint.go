package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/config"
	http_controllers "github.com/mrlokans/google-importer/internal/http"
	"github.com/mrlokans/google-importer/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		log.Fatalf("Data directory %s is not usable: %v", cfg.Storage.DataDir, err)
		return
	}
	log.Printf("Storing imported files under %s\n", cfg.Storage.DataDir)

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Google Importer v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthChecks := map[string]http_controllers.HealthCheck{}
	if app.Tasks != nil {
		go app.Tasks.Start(ctx)
		healthChecks["tasks"] = app.Tasks.Ping

		if cfg.Watchdog.Enabled {
			watchdog := scheduler.NewWatchdog(app.Settings, app.Tasks, scheduler.WatchdogConfig{
				Schedule:   cfg.Watchdog.Schedule,
				StaleAfter: cfg.Watchdog.StaleAfter,
			})
			if err := watchdog.Start(ctx); err != nil {
				log.Printf("WARNING: import watchdog not started: %v", err)
			}
		}
	} else {
		log.Printf("Task queue disabled: Photos and Drive imports are unavailable")
	}

	cleanup := scheduler.NewNotificationCleanup(app.Notifications, scheduler.CleanupConfig{
		Schedule:  cfg.Notifications.CleanupSchedule,
		Retention: cfg.Notifications.Retention,
	})
	if err := cleanup.Start(ctx); err != nil {
		log.Printf("WARNING: notification cleanup not started: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      app.DB,
		HealthChecks:  healthChecks,
		Sessions:      app.Settings,
		Photos:        app.Photos,
		Drive:         app.Drive,
		Calendar:      app.CalendarImporter,
		Contacts:      app.ContactsImporter,
		Flow:          app.Flow,
		Connection:    app.Credentials,
		UserValues:    app.Settings,
		OAuthRedirect: cfg.Google.RedirectURL,
		Notifications: app.Notifications,
		DefaultUser:   cfg.Global.DefaultUser,
		Version:       version,
	}
	if app.Tasks != nil {
		routerCfg.TaskClient = app.Tasks
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if app.Tasks != nil {
			app.Tasks.Stop(ctx)
		}
		cancel()
	}

	Serve(router, cfg, onShutdown)
}
