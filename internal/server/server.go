package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/formstate"
	"taskboard/internal/handler"
	"taskboard/internal/markdown"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/storage"
	"taskboard/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config

	hub    *realtime.Hub
	drafts *formstate.SQLiteStore
}

// handlers groups everything the router mounts.
type handlers struct {
	user      *handler.UserHandler
	task      *handler.TaskHandler
	project   *handler.ProjectHandler
	member    *handler.MemberHandler
	dashboard *handler.DashboardHandler
	draft     *handler.DraftHandler
	realtime  *handler.RealtimeHandler
}

func Init(cfg *config.Config) (*Server, error) {
	if cfg.MigrationsEnabled {
		if err := database.Migrate(cfg.MigrationURL()); err != nil {
			return nil, fmt.Errorf("❌ migrations failed: %w", err)
		}
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, err
	}

	covers, err := storage.NewLocalStore(cfg.StorageDir, cfg.StoragePublicURL, cfg.MaxCoverBytes)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to init storage: %w", err)
	}

	drafts, err := formstate.OpenSQLiteStore(cfg.DraftsDBPath)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to open draft store: %w", err)
	}
	log.Println("✅ Draft store ready")

	hub := realtime.NewHub(cfg.CORSOrigins)

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize services
	v := validation.New()
	taskService := service.NewTaskService(taskRepo, memberRepo, v, hub)
	projectService := service.NewProjectService(projectRepo, memberRepo, profileRepo, covers, v, hub)
	queryService := service.NewQueryService(projectRepo, taskRepo, memberRepo, markdown.New())

	// Initialize handlers
	h := handlers{
		user:      handler.NewUserHandler(profileRepo, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)),
		task:      handler.NewTaskHandler(taskService, queryService),
		project:   handler.NewProjectHandler(projectService, queryService),
		member:    handler.NewMemberHandler(projectService, queryService),
		dashboard: handler.NewDashboardHandler(queryService),
		draft:     handler.NewDraftHandler(drafts, taskService),
		realtime:  handler.NewRealtimeHandler(hub),
	}

	return &Server{
		Engine: newRouter(cfg, h),
		DB:     db,
		Config: cfg,
		hub:    hub,
		drafts: drafts,
	}, nil
}

func newRouter(cfg *config.Config, h handlers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.Static("/uploads", cfg.StorageDir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/register", h.user.Register)
	r.POST("/login", h.user.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", h.project.Create)
		authorized.GET("/projects", h.project.List)
		authorized.PUT("/projects/:id", h.project.Update)
		authorized.DELETE("/projects/:id", h.project.Delete)
		authorized.PUT("/projects/:id/cover", h.project.SetCover)

		// Membership routes
		authorized.GET("/projects/:id/members", h.member.List)
		authorized.POST("/projects/:id/members", h.member.Add)
		authorized.PUT("/projects/:id/members/:user_id", h.member.ChangeRole)
		authorized.DELETE("/projects/:id/members/:user_id", h.member.Remove)
		authorized.POST("/projects/:id/leave", h.member.Leave)

		// Task routes
		authorized.POST("/tasks", h.task.Create)
		authorized.GET("/tasks", h.task.List)
		authorized.GET("/tasks/:id", h.task.GetByID)
		authorized.PUT("/tasks/:id", h.task.Update)
		authorized.DELETE("/tasks/:id", h.task.Delete)
		authorized.POST("/tasks/:id/assign", h.task.Assign)
		authorized.DELETE("/tasks/:id/assign/:user_id", h.task.Unassign)

		// Draft routes
		authorized.GET("/drafts/task", h.draft.Get)
		authorized.PUT("/drafts/task", h.draft.Update)
		authorized.DELETE("/drafts/task", h.draft.Reset)
		authorized.POST("/drafts/task/submit", h.draft.Submit)

		authorized.GET("/dashboard/stats", h.dashboard.Stats)
		authorized.GET("/ws", h.realtime.Connect)
	}
	return r
}

// corsConfig allows every origin when none is configured.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go s.hub.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	// Shutdown does not track hijacked websocket connections; stopping the hub closes them
	stop()
	if err := s.drafts.Close(); err != nil {
		log.Printf("⚠️  Failed to close draft store: %v", err)
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("✅ Server exited properly")
}
