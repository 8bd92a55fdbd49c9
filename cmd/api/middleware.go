package main

import (
	"errors"
	"net/http"

	"github.com/kickbu2towski/breakout-api/internal/data"
	"go.uber.org/zap"
)

func (app *application) logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		app.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("origin", r.Header.Get("Origin")),
		)
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func (app *application) isAuthenticated(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionID")
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				app.badRequestResponse(w, r, "unauthorized")
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		op, err := app.models.Sessions.GetOperator(r.Context(), cookie.Value, data.ScopeAuthentication)
		if err != nil {
			switch {
			case errors.Is(err, data.ErrNotFound):
				app.badRequestResponse(w, r, "unauthorized")
			case errors.Is(err, data.ErrNotConfigured):
				app.notConfiguredResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = app.setOperatorContext(r, op)
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// TODO: vary header
func (app *application) enableCORS(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("origin")
		allowedOrigins := app.config.cors.allowedOrigins

		if origin != "" {
			for _, v := range allowedOrigins {
				if v == origin {
					w.Header().Set("Access-Control-Allow-Origin", v)
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
						w.Header().Set("Access-Control-Allow-Methods", "POST, PUT, DELETE")
						w.WriteHeader(http.StatusOK)
						return
					}

					break
				}
			}
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
