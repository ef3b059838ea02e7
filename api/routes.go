package api

import (
	"github.com/gorilla/mux"

	"github.com/skilltrade/server/internal/config"
	"github.com/skilltrade/server/internal/db"
	"github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/internal/service"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and core service
	repo := sqlite.New(d.GetConn(), logger)
	svc := service.New(d, logger, cfg.Trade.RequestTimeout)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	usersHandler := NewUsersHandler(svc)
	skillsHandler := NewSkillsHandler(svc)
	matchesHandler := NewMatchesHandler(svc)
	tradesHandler := NewTradesHandler(svc)
	reportsHandler := NewReportsHandler(svc)
	chatHandler := NewChatHandler(svc)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Users and profiles
	apiV1.HandleFunc("/users/{id:[0-9]+}", usersHandler.GetUser).Methods("GET")
	apiV1.HandleFunc("/me/profile", usersHandler.GetMyProfile).Methods("GET")
	apiV1.HandleFunc("/me/profile", usersHandler.UpdateProfile).Methods("PUT")

	// Skill catalog and the caller's ledger
	apiV1.HandleFunc("/skills", skillsHandler.ListSkills).Methods("GET")
	apiV1.HandleFunc("/skills/search", skillsHandler.SearchSkills).Methods("GET")
	apiV1.HandleFunc("/me/skills", skillsHandler.ListUserSkills).Methods("GET")
	apiV1.HandleFunc("/me/skills", skillsHandler.AddUserSkill).Methods("POST")
	apiV1.HandleFunc("/me/skills/{id:[0-9]+}", skillsHandler.RemoveUserSkill).Methods("DELETE")

	// Match discovery and lifecycle
	apiV1.HandleFunc("/matches", matchesHandler.Discover).Methods("GET")
	apiV1.HandleFunc("/matches/active", matchesHandler.ListActive).Methods("GET")
	apiV1.HandleFunc("/matches/{id:[0-9]+}", matchesHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/matches/{id:[0-9]+}/start-trade", matchesHandler.StartTrade).Methods("POST")

	// Trade execution
	apiV1.HandleFunc("/trades/{match_id:[0-9]+}", tradesHandler.GetStatus).Methods("GET")
	apiV1.HandleFunc("/trades/{match_id:[0-9]+}/update", tradesHandler.UpdateProgress).Methods("POST")
	apiV1.HandleFunc("/trades/{match_id:[0-9]+}/complete", tradesHandler.Complete).Methods("POST")
	apiV1.HandleFunc("/trades/{match_id:[0-9]+}/rate", tradesHandler.SubmitRating).Methods("POST")

	// Reports and chat
	apiV1.HandleFunc("/reports", reportsHandler.ReportIssue).Methods("POST")
	apiV1.HandleFunc("/reports", reportsHandler.ListReports).Methods("GET")
	apiV1.HandleFunc("/matches/{id:[0-9]+}/chat", chatHandler.ListMessages).Methods("GET")
	apiV1.HandleFunc("/matches/{id:[0-9]+}/chat", chatHandler.PostMessage).Methods("POST")

	return r
}
