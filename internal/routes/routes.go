package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"reviewboard/internal/handlers"
	"reviewboard/internal/middleware"
	"reviewboard/internal/utils"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	companyHandler *handlers.CompanyHandler,
	tm *utils.TokenManager,
	users middleware.UserReader,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")

	api.HandleFunc("/password/forgot", passwordHandler.Forgot).Methods("POST")
	api.HandleFunc("/password/recover", passwordHandler.Recover).Methods("POST")

	api.HandleFunc("/companies", companyHandler.ListCompanies).Methods("GET")
	api.HandleFunc("/companies/{id:[0-9]+}", companyHandler.GetCompany).Methods("GET")

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(func(next http.Handler) http.Handler {
		return middleware.JWTAuth(tm, users, next)
	})

	protected.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	protected.HandleFunc("/password", passwordHandler.Change).Methods("PATCH")
	protected.HandleFunc("/account", authHandler.DeleteAccount).Methods("DELETE")

	protected.HandleFunc("/companies", companyHandler.CreateCompany).Methods("POST")
	protected.HandleFunc("/companies/{id:[0-9]+}", companyHandler.UpdateCompany).Methods("PATCH")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.OnlyRole("admin"))
	admin.HandleFunc("/users", authHandler.GetUsers).Methods("GET")

	// Удаление компаний оставлено администраторам
	adminCompanies := protected.PathPrefix("").Subrouter()
	adminCompanies.Use(middleware.OnlyRole("admin"))
	adminCompanies.HandleFunc("/companies/{id:[0-9]+}", companyHandler.DeleteCompany).Methods("DELETE")
}
