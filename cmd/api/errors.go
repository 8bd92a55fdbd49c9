package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.Error("handler error", zap.String("path", r.URL.Path), zap.Error(err))
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	res := envelope{
		"error": message,
	}

	err := app.writeJSON(w, status, res, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered an error and could not process the response"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource is not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not allowed on this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusBadRequest, message)
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "the room was modified concurrently, try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) notConfiguredResponse(w http.ResponseWriter, r *http.Request) {
	message := "the room store is not configured"
	app.errorResponse(w, r, http.StatusServiceUnavailable, message)
}
