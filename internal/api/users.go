package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/pathakanu/muditam/internal/store"
)

type createUserRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Name        string `json:"name"`
	YearOfBirth string `json:"yearOfBirth"`
	Gender      string `json:"gender"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, created, err := h.store.CreateUserIfAbsent(r.Context(), &model.User{
		Phone:       req.Phone,
		Name:        req.Name,
		YearOfBirth: req.YearOfBirth,
		Gender:      req.Gender,
		Email:       req.Email,
	})
	if err != nil {
		h.logger.Errorw("create user failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Could not create user")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(w, r, status, user)
}

type updateUserRequest struct {
	Phone             string  `json:"phone" validate:"required"`
	Name              *string `json:"name"`
	YearOfBirth       *string `json:"yearOfBirth"`
	Gender            *string `json:"gender"`
	Email             *string `json:"email" validate:"omitempty,email"`
	PreferredLanguage *string `json:"preferredLanguage" validate:"omitempty,oneof=English Hindi"`
	Avatar            *string `json:"avatar" validate:"omitempty,url"`
}

type userEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), req.Phone, store.ProfileUpdate{
		Name:              req.Name,
		YearOfBirth:       req.YearOfBirth,
		Gender:            req.Gender,
		Email:             req.Email,
		PreferredLanguage: req.PreferredLanguage,
		Avatar:            req.Avatar,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond(w, r, http.StatusNotFound, userEnvelope{Message: "User not found for update"})
	case err != nil:
		h.logger.Errorw("update user failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Could not update user")
	default:
		respond(w, r, http.StatusOK, userEnvelope{Success: true, Message: "User updated successfully", User: user})
	}
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	user, err := h.store.UserByPhone(r.Context(), phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond(w, r, http.StatusNotFound, map[string]string{"message": "User not found"})
	case err != nil:
		h.logger.Errorw("get user failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
	default:
		respond(w, r, http.StatusOK, user)
	}
}

func (h *handler) purchaseStatus(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	user, err := h.store.UserByPhone(r.Context(), phone)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Errorw("purchase status failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to fetch")
		return
	}
	respond(w, r, http.StatusOK, map[string]bool{"hasPurchased": user != nil && user.HasPurchased})
}

type markPurchasedRequest struct {
	Phone               string   `json:"phone" validate:"required"`
	PurchasedProductIDs []string `json:"purchasedProductIds"`
}

func (h *handler) markPurchased(w http.ResponseWriter, r *http.Request) {
	var req markPurchasedRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.MarkPurchased(r.Context(), req.Phone, req.PurchasedProductIDs); err != nil {
		h.logger.Errorw("mark purchased failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, r, http.StatusOK, userEnvelope{Success: true})
}

type kitProgressResponse struct {
	CurrentKit    int   `json:"currentKit"`
	CompletedKits []int `json:"completedKits"`
}

func (h *handler) kitProgress(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	user, err := h.store.UserByPhone(r.Context(), phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "User not found")
		return
	case err != nil:
		h.logger.Errorw("kit progress failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to fetch kit progress")
		return
	}

	resp := kitProgressResponse{CurrentKit: user.CurrentKitNumber, CompletedKits: user.CompletedKits}
	if resp.CurrentKit == 0 {
		resp.CurrentKit = 1
	}
	if resp.CompletedKits == nil {
		resp.CompletedKits = []int{}
	}
	respond(w, r, http.StatusOK, resp)
}

type updateKitRequest struct {
	Phone        string `json:"phone" validate:"required"`
	NewKitNumber int    `json:"newKitNumber" validate:"required,gte=1"`
}

func (h *handler) updateKitProgress(w http.ResponseWriter, r *http.Request) {
	var req updateKitRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.UpdateKitProgress(r.Context(), req.Phone, req.NewKitNumber)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "User not found")
	case err != nil:
		h.logger.Errorw("update kit progress failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to update kit progress")
	default:
		respond(w, r, http.StatusOK, userEnvelope{Success: true, User: user})
	}
}

type saveTokenRequest struct {
	UserID        uint   `json:"userId" validate:"required"`
	ExpoPushToken string `json:"expoPushToken" validate:"required"`
}

func (h *handler) savePushToken(w http.ResponseWriter, r *http.Request) {
	var req saveTokenRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err := h.store.SavePushToken(r.Context(), req.UserID, req.ExpoPushToken)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "User not found")
	case err != nil:
		h.logger.Errorw("save push token failed", "userId", req.UserID, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Could not save token")
	default:
		respond(w, r, http.StatusOK, userEnvelope{Success: true})
	}
}

type videoFeedbackRequest struct {
	Phone   string `json:"phone" validate:"required"`
	VideoID string `json:"videoId" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=like dislike"`
}

func (h *handler) videoFeedback(w http.ResponseWriter, r *http.Request) {
	var req videoFeedbackRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.RecordVideoFeedback(r.Context(), req.Phone, req.VideoID, req.Status)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "User not found")
	case err != nil:
		h.logger.Errorw("video feedback failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Could not save feedback")
	default:
		respond(w, r, http.StatusOK, map[string]any{"success": true, "likedVideos": user.LikedVideos})
	}
}
