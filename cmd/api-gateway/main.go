package main

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

	"github.com/arka-edu/timetable-api/internal/engine"
	"github.com/arka-edu/timetable-api/internal/handler"
	"github.com/arka-edu/timetable-api/internal/middleware"
	"github.com/arka-edu/timetable-api/internal/repository"
	"github.com/arka-edu/timetable-api/internal/service"
	"github.com/arka-edu/timetable-api/pkg/cache"
	"github.com/arka-edu/timetable-api/pkg/config"
	"github.com/arka-edu/timetable-api/pkg/database"
	"github.com/arka-edu/timetable-api/pkg/jobs"
	"github.com/arka-edu/timetable-api/pkg/logger"
	corsmiddleware "github.com/arka-edu/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/arka-edu/timetable-api/pkg/middleware/requestid"
	"github.com/arka-edu/timetable-api/pkg/storage"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timetable cache disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.ResultTTL)

	// Repositories.
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TimetableTTL, logr, cfg.Cache.Enabled)
	}

	weights := engine.Weights{
		EdgePenalty:    cfg.Solver.EdgePenalty,
		BalancePenalty: cfg.Solver.BalancePenalty,
		PreferenceUnit: cfg.Solver.PreferenceUnit,
		RoomPreference: cfg.Solver.RoomPreference,
	}
	eng := engine.New(logr)

	generationSvc := service.NewGenerationService(
		catalogRepo, generationRepo, timetableRepo, db, eng,
		cacheSvc, metricsSvc, nil, logr,
		service.GenerationConfig{TimeLimit: cfg.Solver.TimeLimit, Weights: weights},
	)
	queue := jobs.NewQueue("generation", generationSvc.ProcessJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Solver.QueueBuffer,
		Logger:     logr,
	})
	generationSvc.AttachQueue(queue)

	timetableSvc := service.NewTimetableService(timetableRepo, generationRepo, catalogRepo, db, cacheSvc, metricsSvc, nil, logr)
	timetableSvc.AttachRunGuard(generationSvc)
	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, nil, logr)
	sectionSvc := service.NewSectionService(sectionRepo, nil, logr)
	roomSvc := service.NewRoomService(roomRepo, nil, logr)
	offeringSvc := service.NewOfferingService(offeringRepo, teacherRepo, courseRepo, sectionRepo, roomRepo, nil, logr)
	constraintSvc := service.NewConstraintService(constraintRepo, timeSlotRepo, nil, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, nil, logr)
	importSvc := service.NewImportService(teacherRepo, courseRepo, sectionRepo, roomRepo, offeringRepo, timeSlotRepo, cfg.Import.MaxFileSizeBytes, logr)
	exportSvc := service.NewExportService(timetableSvc, exportStore, signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.ResultTTL}, logr, nil, nil)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, handler.Handlers{
		Teachers:    handler.NewTeacherHandler(teacherSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Sections:    handler.NewSectionHandler(sectionSvc),
		Rooms:       handler.NewRoomHandler(roomSvc),
		Offerings:   handler.NewOfferingHandler(offeringSvc),
		Constraints: handler.NewConstraintHandler(constraintSvc),
		TimeSlots:   handler.NewTimeSlotHandler(timeSlotSvc),
		Generations: handler.NewGenerationHandler(generationSvc),
		Timetables:  handler.NewTimetableHandler(timetableSvc),
		Imports:     handler.NewImportHandler(importSvc),
		Exports:     handler.NewExportHandler(exportSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
