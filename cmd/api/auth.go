package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kickbu2towski/breakout-api/internal/data"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var oauthConfig = oauth2.Config{
	Endpoint: google.Endpoint,
	Scopes: []string{
		"https://www.googleapis.com/auth/userinfo.profile",
		"https://www.googleapis.com/auth/userinfo.email",
	},
}

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo?access_token="

func (app *application) getRedirectURLHandler(w http.ResponseWriter, r *http.Request) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	oauthState := base64.StdEncoding.EncodeToString(b)
	cookie := &http.Cookie{
		Name:     "oauthState",
		Value:    oauthState,
		Secure:   true,
		HttpOnly: true,
		Expires:  time.Now().Add(5 * time.Minute),
		Path:     "/",
	}
	http.SetCookie(w, cookie)

	oauthConfig.ClientID = app.config.google.clientID
	oauthConfig.ClientSecret = app.config.google.clientSecret
	oauthConfig.RedirectURL = app.config.google.redirectURL
	redirectURL := oauthConfig.AuthCodeURL(oauthState)

	err = app.writeJSON(w, http.StatusOK, envelope{"redirectURL": redirectURL}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) callbackHandler(w http.ResponseWriter, r *http.Request) {
	state, code := r.FormValue("state"), r.FormValue("code")
	cookie, err := r.Cookie("oauthState")

	if err != nil {
		switch {
		case errors.Is(err, http.ErrNoCookie):
			app.badRequestResponse(w, r, "missing required cookie: oauthState")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if cookie.Value != state {
		app.badRequestResponse(w, r, "invalid cookie found: oauthState")
		return
	}

	token, err := oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	res, err := http.Get(userInfoURL + token.AccessToken)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		app.badRequestResponse(w, r, "fetching oauth user info failed")
		return
	}

	var userInfo struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	err = json.NewDecoder(res.Body).Decode(&userInfo)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	op := data.Operator{
		ID:       userInfo.ID,
		Username: userInfo.Name,
		Email:    userInfo.Email,
	}

	session, err := data.NewSession(op, 24*time.Hour, data.ScopeAuthentication)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.models.Sessions.Insert(r.Context(), session)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	sessionCookie := &http.Cookie{
		Name:     "sessionID",
		Value:    session.PlainText,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		Expires:  session.ExpiryTime,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(w, sessionCookie)

	http.Redirect(w, r, app.config.webURL, http.StatusTemporaryRedirect)
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	op := app.getOperatorContext(r)

	err := app.models.Sessions.DeleteForOperator(r.Context(), op.ID, data.ScopeAuthentication)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	sessionCookie := &http.Cookie{
		Name:     "sessionID",
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		Expires:  time.Unix(0, 0),
	}
	http.SetCookie(w, sessionCookie)

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "logged out successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
