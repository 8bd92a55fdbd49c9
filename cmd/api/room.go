package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/kickbu2towski/breakout-api/internal/data"
)

func (app *application) claimRoomHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Category        string `json:"category"`
		ParticipantID   string `json:"participant_id"`
		ParticipantName string `json:"participant_name"`
	}
	err := app.readJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	if input.Category == "" || input.ParticipantID == "" {
		app.badRequestResponse(w, r, "category and participant_id are required")
		return
	}

	room, err := app.models.Rooms.FindAndClaim(r.Context(), input.Category, input.ParticipantID, input.ParticipantName)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNoFreeRooms):
			app.errorResponse(w, r, http.StatusNotFound, "no free rooms available in this category")
		case errors.Is(err, data.ErrVersionConflict):
			app.conflictResponse(w, r)
		case errors.Is(err, data.ErrNotConfigured):
			app.notConfiguredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.hub.publish(RoomEvent{Type: EventRoomClaimed, Room: room})

	err = app.writeJSON(w, http.StatusOK, envelope{"room": room}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	roomID := params.ByName("roomID")

	room, err := app.models.Rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrNotConfigured):
			app.notConfiguredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"room": room}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) recordPresenceHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	roomID := params.ByName("roomID")

	var input struct {
		UserID  string `json:"user_id"`
		Joining bool   `json:"joining"`
	}
	err := app.readJSON(r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err.Error())
		return
	}

	if input.UserID == "" {
		app.badRequestResponse(w, r, "user_id is required")
		return
	}

	room, result, err := app.models.Rooms.RecordPresence(r.Context(), roomID, input.UserID, input.Joining)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrVersionConflict):
			app.conflictResponse(w, r)
		case errors.Is(err, data.ErrNotConfigured):
			app.notConfiguredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if result == data.PresenceUpdated && room.Status == data.StatusFree {
		app.hub.publish(RoomEvent{Type: EventRoomFreed, Room: room})
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"room":    room,
		"changed": result == data.PresenceUpdated,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) initializeRoomsHandler(w http.ResponseWriter, r *http.Request) {
	err := app.models.Rooms.InitializeRooms(r.Context(), app.config.categories, app.config.roomsPerCategory)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrNotConfigured):
			app.notConfiguredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.hub.publish(RoomEvent{Type: EventPoolInitialized})

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "rooms initialized successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
