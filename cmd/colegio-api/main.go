package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/colegioadm/colegio-api/api/swagger"
	"github.com/colegioadm/colegio-api/internal/handler"
	"github.com/colegioadm/colegio-api/internal/middleware"
	"github.com/colegioadm/colegio-api/internal/repository"
	"github.com/colegioadm/colegio-api/internal/service"
	"github.com/colegioadm/colegio-api/pkg/cache"
	"github.com/colegioadm/colegio-api/pkg/config"
	"github.com/colegioadm/colegio-api/pkg/database"
	"github.com/colegioadm/colegio-api/pkg/logger"
	corsmiddleware "github.com/colegioadm/colegio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/colegioadm/colegio-api/pkg/middleware/requestid"
)

// @title Colegio API
// @version 1.0.0
// @description School administration backend: DNI-based authentication, enrollment and records
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, lookup caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	credentialRepo := repository.NewCredentialRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	tutorRepo := repository.NewTutorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	identityService := service.NewIdentityService(credentialRepo, employeeRepo, tutorRepo, logr, service.IdentityConfig{
		MinPasswordLength: cfg.Security.MinPasswordLength,
		BcryptCost:        cfg.Security.BcryptCost,
	})
	authService := service.NewAuthService(credentialRepo, identityService, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "colegio-api",
	})
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, identityService, validate, logr)
	tutorService := service.NewTutorService(tutorRepo, identityService, validate, logr)
	studentService := service.NewStudentService(studentRepo, enrollmentRepo, validate, logr)
	gradeService := service.NewGradeService(gradeRepo, validate, logr)
	lookupService := service.NewLookupService(lookupRepo, cacheRepo, metricsService, validate, logr, cfg.Cache.LookupTTL)
	incidentService := service.NewIncidentService(incidentRepo, validate, logr)
	meetingService := service.NewMeetingService(meetingRepo, validate, logr)
	activityService := service.NewActivityService(activityRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, metricsService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	tutorHandler := handler.NewTutorHandler(tutorService)
	studentHandler := handler.NewStudentHandler(studentService)
	gradeHandler := handler.NewGradeHandler(gradeService)
	lookupHandler := handler.NewLookupHandler(lookupService)
	incidentHandler := handler.NewIncidentHandler(incidentService)
	meetingHandler := handler.NewMeetingHandler(meetingService)
	activityHandler := handler.NewActivityHandler(activityService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authService))
		authed.GET("/check", authHandler.Check)
		authed.POST("/cambiar-password", authHandler.ChangePassword)
		authed.POST("/logout", authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	staff := protected.Group("")
	staff.Use(middleware.StaffOnly())

	admin := protected.Group("")
	admin.Use(middleware.RBAC(middleware.RoleDirector, middleware.RoleRector, middleware.RoleSecretario))

	admin.GET("/empleados", employeeHandler.List)
	admin.GET("/empleados/dni/:dni", employeeHandler.GetByDNI)
	admin.GET("/empleados/:id", employeeHandler.Get)
	admin.POST("/empleados", employeeHandler.Create)
	admin.PUT("/empleados/:id", employeeHandler.Update)
	admin.DELETE("/empleados/:id", employeeHandler.Delete)

	staff.GET("/tutores", tutorHandler.List)
	staff.GET("/tutores/dni/:dni", tutorHandler.GetByDNI)
	staff.GET("/tutores/:id", tutorHandler.Get)
	staff.POST("/tutores", tutorHandler.Create)
	staff.PUT("/tutores/:id", tutorHandler.Update)
	admin.DELETE("/tutores/:id", tutorHandler.Delete)

	staff.POST("/alumnos/completo",
		middleware.Audit(auditRepo, "ENROLL_COMPLETE", "alumnos"),
		enrollmentHandler.EnrollComplete)
	staff.GET("/alumnos", studentHandler.List)
	staff.GET("/alumnos/dni/:dni", studentHandler.GetByDNI)
	staff.GET("/alumnos/:id", studentHandler.Get)
	staff.PUT("/alumnos/:id", studentHandler.Update)
	admin.DELETE("/alumnos/:id", studentHandler.Delete)
	staff.GET("/alumnos/:id/tutores", studentHandler.Tutors)
	staff.POST("/alumnos/:id/tutores", studentHandler.LinkTutor)
	staff.GET("/alumnos/:id/grados", studentHandler.GradeHistory)

	protected.GET("/grados", gradeHandler.List)
	protected.GET("/grados/:id", gradeHandler.Get)
	protected.GET("/grados/:id/cupos", gradeHandler.Capacity)
	admin.POST("/grados", gradeHandler.Create)
	admin.PUT("/grados/:id/cupos", gradeHandler.UpdateSeats)

	protected.GET("/roles", lookupHandler.Roles)
	protected.GET("/parentescos", lookupHandler.Relationships)
	protected.GET("/colegios", lookupHandler.Schools)
	staff.POST("/colegios", lookupHandler.CreateSchool)
	protected.GET("/lugares", lookupHandler.Places)
	protected.GET("/tipos-incidencia", lookupHandler.IncidentTypes)

	staff.GET("/incidencias", incidentHandler.ListIncidents)
	staff.POST("/incidencias", incidentHandler.CreateIncident)
	staff.GET("/medidas", incidentHandler.ListMeasures)
	staff.GET("/medidas/:id", incidentHandler.GetMeasure)
	staff.POST("/medidas", incidentHandler.CreateMeasure)
	admin.DELETE("/medidas/:id", incidentHandler.DeleteMeasure)

	protected.GET("/reuniones", meetingHandler.List)
	protected.GET("/reuniones/:id", meetingHandler.Get)
	staff.POST("/reuniones", meetingHandler.Create)
	admin.DELETE("/reuniones/:id", meetingHandler.Delete)
	protected.GET("/reuniones/:id/asistencias", meetingHandler.Attendance)
	staff.POST("/reuniones/:id/asistencias", meetingHandler.RecordAttendance)

	protected.GET("/actividades", activityHandler.List)
	protected.GET("/actividades/:id", activityHandler.Get)
	staff.POST("/actividades", activityHandler.Create)
	admin.DELETE("/actividades/:id", activityHandler.Delete)
	protected.GET("/actividades/:id/grados", activityHandler.Schedules)
	staff.POST("/actividades/:id/grados", activityHandler.Schedule)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
