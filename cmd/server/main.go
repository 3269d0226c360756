package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/app"
	"github.com/miumc/portal/internal/handlers"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	service, err := app.NewService(configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}
	if service.Config.Classroom.Provision {
		if err := service.Store.ApplyMigrations(service.Config.Classroom.MigrationsDir); err != nil {
			logger.Error.Fatalf("Failed to apply classroom migrations: %v", err)
		}
	}
	if err := service.ProbeClassroom(); err != nil {
		logger.Error.Fatalf("Failed to probe classroom capability: %v", err)
	}

	catalog := handlers.NewCatalogHandler(service)
	enrollment := handlers.NewEnrollmentHandler(service)
	account := handlers.NewAccountHandler(service)
	classroom := handlers.NewClassroomHandler(service)
	admin := handlers.NewAdminHandler(service)

	http.HandleFunc("GET /api/careers", handlers.Instrument("/api/careers", catalog.HandleCareers))
	http.HandleFunc("GET /api/specializations/{careerId}", handlers.Instrument("/api/specializations", catalog.HandleSpecializations))
	http.HandleFunc("GET /api/subjects/{specializationId}", handlers.Instrument("/api/subjects", catalog.HandleSubjects))
	http.HandleFunc("GET /api/progress/{studentCode}", handlers.Instrument("/api/progress", catalog.HandleProgress))

	http.HandleFunc("GET /api/enrollments/{studentCode}", handlers.Instrument("/api/enrollments", enrollment.HandleList))
	http.HandleFunc("POST /api/enrollments/save", handlers.Instrument("/api/enrollments/save", enrollment.HandleSave))

	http.HandleFunc("POST /api/auth/login", handlers.Instrument("/api/auth/login", account.HandleLogin))
	http.HandleFunc("POST /api/auth/register", handlers.Instrument("/api/auth/register", account.HandleRegister))
	http.HandleFunc("POST /api/onboarding/complete", handlers.Instrument("/api/onboarding/complete", account.HandleOnboarding))

	http.HandleFunc("GET /api/classroom/{subjectId}/classmates", handlers.Instrument("/api/classroom/classmates", classroom.HandleClassmates))
	http.HandleFunc("GET /api/classroom/{subjectId}/materials", handlers.Instrument("/api/classroom/materials", classroom.HandleMaterials))
	http.HandleFunc("GET /api/classroom/{subjectId}/evaluations/{studentCode}", handlers.Instrument("/api/classroom/evaluations", classroom.HandleEvaluations))
	http.HandleFunc("POST /api/classroom/submit", handlers.Instrument("/api/classroom/submit", classroom.HandleSubmit))

	http.HandleFunc("GET /api/admin/users", handlers.Instrument("/api/admin/users", admin.HandleListUsers))
	http.HandleFunc("PUT /api/admin/users/{id}", handlers.Instrument("/api/admin/users", admin.HandleUpdateUser))
	http.HandleFunc("DELETE /api/admin/users/{id}", handlers.Instrument("/api/admin/users", admin.HandleDeleteUser))
	http.HandleFunc("POST /api/admin/update-records-bulk", handlers.Instrument("/api/admin/update-records-bulk", admin.HandleBulkRecords))

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting portal server on %s", service.Config.Server.Port)
	logger.Info.Printf("Current academic period: %s", service.Config.Academic.CurrentPeriod)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Portal server failed: %v", err)
	}
}
