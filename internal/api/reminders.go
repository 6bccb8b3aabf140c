package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathakanu/muditam/internal/store"
)

type reminderRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Time   string `json:"time" validate:"required,clock"`
}

func (h *handler) upsertReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.UserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Errorw("reminder owner lookup failed", "userId", req.UserID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	if _, err := h.store.UpsertReminder(r.Context(), req.UserID, req.Type, req.Time); err != nil {
		h.logger.Errorw("upsert reminder failed", "userId", req.UserID, "type", req.Type, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Could not save reminder")
		return
	}
	respond(w, r, http.StatusOK, userEnvelope{Success: true})
}

func (h *handler) listReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(chi.URLParam(r, "userId"))
	if !ok {
		respondError(w, r, http.StatusBadRequest, "userId must be a positive integer")
		return
	}

	reminders, err := h.store.RemindersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("list reminders failed", "userId", userID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, r, http.StatusOK, reminders)
}

func (h *handler) deleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(chi.URLParam(r, "userId"))
	if !ok {
		respondError(w, r, http.StatusBadRequest, "userId must be a positive integer")
		return
	}
	category := chi.URLParam(r, "type")

	err := h.store.DeleteReminder(r.Context(), userID, category)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "Reminder not found")
	case err != nil:
		h.logger.Errorw("delete reminder failed", "userId", userID, "type", category, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
	default:
		respond(w, r, http.StatusOK, userEnvelope{Success: true})
	}
}
