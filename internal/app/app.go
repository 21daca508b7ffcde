package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "digi3/docs"
	"digi3/internal/authz"
	"digi3/internal/config"
	"digi3/internal/handlers"
	"digi3/internal/logging"
	"digi3/internal/metrics"
	"digi3/internal/pdf"
	"digi3/internal/realtime"
	"digi3/internal/repositories"
	"digi3/internal/routes"
	"digi3/internal/services"
)

// OpenDB opens and pings the Postgres database.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Services bundles the domain services built from one database handle.
type Services struct {
	Auth      services.AuthService
	Users     services.UserService
	Projects  services.ProjectService
	Tasks     services.TaskService
	Customers *services.CustomerService
	Reports   services.ReportService
	Board     *realtime.BoardHub
}

func NewServices(cfg *config.Config, db *sql.DB) (*Services, error) {
	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	attachmentRepo := repositories.NewAttachmentRepository(db)

	// === Adapters ===
	ev := authz.NewEvaluator()
	files := services.NewDiskStore(cfg.Files.RootDir)
	notifier, err := services.NewTelegramService(cfg.Telegram.BotToken)
	if err != nil {
		// notifications are optional
		log.Warnf("[app][telegram][warn] %v; notifications disabled", err)
		notifier = services.NopNotifier()
	}
	var emails services.EmailService
	if cfg.Email.SMTPHost != "" {
		emails = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	pdfGen := pdf.NewReportGenerator(cfg.Reports.FontPath)
	board := realtime.NewBoardHub()

	// === Services ===
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	projectService := services.NewProjectService(projectRepo, taskRepo, userRepo, customerRepo, files, ev)
	return &Services{
		Auth:      authService,
		Users:     services.NewUserService(userRepo, emails, authService, ev),
		Projects:  projectService,
		Tasks:     services.NewTaskService(taskRepo, projectRepo, userRepo, commentRepo, attachmentRepo, files, notifier, board, ev),
		Customers: services.NewCustomerService(customerRepo, ev),
		Reports:   services.NewReportService(projectService, projectRepo, taskRepo, userRepo, pdfGen, ev),
		Board:     board,
	}, nil
}

// NewRouter assembles middleware and routes.
func NewRouter(cfg *config.Config, s *Services) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}
	ev := authz.NewEvaluator()

	router := gin.New()
	router.Use(logging.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.MaxMultipartMemory = 16 << 20

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		s.Auth,
		s.Users,
		handlers.NewAuthHandler(s.Auth, s.Projects, ev, cfg.Server.SecureCookies),
		handlers.NewProjectHandler(s.Projects, s.Tasks, ev),
		handlers.NewTaskHandler(s.Tasks),
		handlers.NewCustomerHandler(s.Customers),
		handlers.NewUserHandler(s.Users),
		handlers.NewReportHandler(s.Reports),
		handlers.NewBoardSocketHandler(s.Projects, s.Board, cfg.Server.AllowedOrigins),
	)
	return router, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := OpenDB(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warnf("[app][db][warn] close: %v", err)
		}
	}()

	svcs, err := NewServices(cfg, db)
	if err != nil {
		return err
	}
	router, err := NewRouter(cfg, svcs)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("[app][http] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("[app][http] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}
