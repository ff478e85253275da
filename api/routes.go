package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, empRepo repository.EmployeeRepo, userRepo repository.UserRepo, schemas *assessment.Schemas) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(userRepo, cfg.JWTSecret, cfg.TokenDuration)
	employeesHandler := NewEmployeesHandler(empRepo, schemas)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/assessment/questions", QuestionsHandler).Methods("GET")

	// Dashboard endpoints, admin and HR only
	employees := apiV1.PathPrefix("/employees").Subrouter()
	employees.Use(RequireRole(models.RoleAdmin, models.RoleHR))
	employees.HandleFunc("", employeesHandler.CreateEmployee).Methods("POST")
	employees.HandleFunc("", employeesHandler.ListEmployees).Methods("GET")
	employees.HandleFunc("/options", employeesHandler.ListOptions).Methods("GET")
	employees.HandleFunc("/export", employeesHandler.Export).Methods("GET")
	employees.HandleFunc("/{id}", employeesHandler.GetEmployee).Methods("GET")
	employees.HandleFunc("/{id}", employeesHandler.UpdateEmployee).Methods("PUT")

	return r
}
