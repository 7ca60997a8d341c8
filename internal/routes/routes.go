package routes

import (
	"net/http"

	"github.com/accountkit/accountkit/internal/app"
	"github.com/accountkit/accountkit/internal/handler"
	"github.com/accountkit/accountkit/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	account := handler.NewAccountHandler(app.Lifecycle, app.Users)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", account.Health)
	mux.HandleFunc("POST /register", account.Register)
	mux.HandleFunc("GET /confirm/{code}", account.Confirm)
	mux.HandleFunc("POST /forgot-password", account.ForgotPassword)
	mux.HandleFunc("POST /reset-password", account.ResetPassword)

	return middleware.Chain(mux,
		middleware.RequestLogging,
	)
}
