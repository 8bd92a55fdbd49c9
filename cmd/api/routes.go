package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	corsMw := alice.New(app.logRequest, app.enableCORS)
	authMw := alice.New(app.isAuthenticated)

	// authentication
	router.HandlerFunc(http.MethodGet, "/v1/auth/redirectURL", app.getRedirectURLHandler)
	router.HandlerFunc(http.MethodGet, "/v1/auth/callback", app.callbackHandler)
	router.Handler(http.MethodDelete, "/v1/auth/logout", authMw.Then(http.HandlerFunc(app.logoutHandler)))

	// rooms: claim and presence are called by the bot transport
	router.HandlerFunc(http.MethodPost, "/v1/claims", app.claimRoomHandler)
	router.HandlerFunc(http.MethodGet, "/v1/rooms/:roomID", app.getRoomHandler)
	router.HandlerFunc(http.MethodPost, "/v1/rooms/:roomID/presence", app.recordPresenceHandler)

	// admin
	router.Handler(http.MethodPost, "/v1/admin/initialize", authMw.Then(http.HandlerFunc(app.initializeRoomsHandler)))

	// websocket
	router.Handler(http.MethodGet, "/ws", authMw.Then(http.HandlerFunc(app.wsHandler)))

	return corsMw.Then(router)
}
