package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-api/api/swagger"
	"github.com/noah-isme/school-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/cache"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
	"github.com/noah-isme/school-portal-api/pkg/export"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

// @title School Portal API
// @version 1.0.0
// @description Academic registry, announcements, slide gallery and self-service portal
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logr); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	slideFiles, err := storage.NewLocalStorage(filepath.Join(cfg.Uploads.Dir, "slides"))
	if err != nil {
		return fmt.Errorf("prepare upload directory: %w", err)
	}

	validate := validator.New()
	tx := repository.NewTransactor(db)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	slideRepo := repository.NewSlideRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	audits := service.NewAuditService(auditRepo, logr, jobs.QueueConfig{Workers: 2, MaxRetries: 3})
	audits.Start(context.Background())
	defer audits.Stop()

	authSvc := service.NewAuthService(userRepo, studentRepo, teacherRepo, tx, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, userRepo, enrollmentRepo, gradeRepo, tx, cacheSvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, userRepo, courseRepo, tx, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, enrollmentRepo, gradeRepo, tx, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, gradeRepo, tx, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, cacheSvc, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, validate, logr)
	slideSvc := service.NewSlideService(slideRepo, slideFiles, tx, metrics, validate, logr, service.SlideConfig{
		MaxBytes:  cfg.Uploads.MaxSlideBytes,
		PublicURL: cfg.Uploads.SlidePublicURL,
	})
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, cfg.Cache.TTL, logr)
	exportSvc := service.NewExportService(gradeRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	portalSvc := service.NewPortalService(service.PortalServiceParams{
		Users:       userRepo,
		Students:    studentRepo,
		Teachers:    teacherRepo,
		Courses:     courseRepo,
		Enrollments: enrollmentRepo,
		Grades:      gradeRepo,
		GradeWriter: gradeSvc,
		TeacherEdit: teacherSvc,
		Dashboard:   dashboardSvc,
		Exporter:    exportSvc,
		Logger:      logr,
	})

	bootstrap := service.NewBootstrapService(userRepo, slideRepo, logr)
	if err := bootstrap.Run(ctx, service.AdminAccount{
		Username: cfg.Bootstrap.AdminUsername,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}); err != nil {
		return fmt.Errorf("seed initial records: %w", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Teachers:      handler.NewTeacherHandler(teacherSvc),
		Courses:       handler.NewCourseHandler(courseSvc),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentSvc),
		Grades:        handler.NewGradeHandler(gradeSvc, exportSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Slides:        handler.NewSlideHandler(slideSvc),
		Portal:        handler.NewPortalHandler(portalSvc),
		Metrics:       handler.NewMetricsHandler(metrics, db),
	}, authSvc, audits, logr, handler.RouteConfig{
		APIPrefix:     cfg.APIPrefix,
		SlideImageDir: slideFiles.Dir(),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
