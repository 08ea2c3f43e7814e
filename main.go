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
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"smart-clinic-server/internal/config"
	"smart-clinic-server/internal/jobs"
	"smart-clinic-server/internal/logger"
	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/notify"
	"smart-clinic-server/internal/routes"
	"smart-clinic-server/internal/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smart-clinic-server",
		Short: "Smart Clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, _, err := bootstrap()
			if err != nil {
				return err
			}
			log.Info("database schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password, firstName, lastName string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			auth := services.NewAuthService(db, cfg, notify.New(cfg, log.WithComponent("mailer")), log.WithComponent("auth"))
			user := models.User{Email: email, FirstName: firstName, LastName: lastName}
			if err := auth.CreateAdmin(cmd.Context(), &user, password); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Printf("Admin %s created with id %s\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	cmd.Flags().StringVar(&firstName, "first-name", "Clinic", "admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "Admin", "admin last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// bootstrap loads configuration, builds the logger and opens the migrated database.
func bootstrap() (*config.Config, *logger.Logger, *gorm.DB, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := models.InitDB(models.DatabaseConfig{
		DSN:    cfg.Database.DSN,
		Logger: log.Gorm(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, log, db, nil
}

// newScheduler runs the background jobs on the same services the routes use.
func newScheduler(cfg *config.Config, svcs *routes.Services, notifier notify.Notifier, log *logger.Logger) *jobs.Scheduler {
	return jobs.NewScheduler(
		svcs.Medicines,
		svcs.Appointments,
		notifier,
		cfg.Clinic.AdminEmail,
		cfg.Clinic.Location,
		log.WithComponent("jobs"),
	)
}

func runServer() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	notifier := notify.New(cfg, log.WithComponent("mailer"))

	router := gin.New()
	router.Use(gin.Recovery(), log.GinMiddleware(), metrics.Middleware())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	svcs := routes.NewServices(db, cfg, log, notifier)
	routes.SetupRoutes(router, db, cfg, log, svcs)

	if cfg.Jobs.Enabled {
		scheduler := newScheduler(cfg, svcs, notifier, log)
		if err := scheduler.Start(cfg.Jobs.LowStockCron, cfg.Jobs.ReminderCron); err != nil {
			return fmt.Errorf("start jobs: %w", err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
