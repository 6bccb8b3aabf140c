package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/pathakanu/muditam/internal/openai"
	"github.com/pathakanu/muditam/internal/store"
)

type quizRequest struct {
	Phone   string         `json:"phone" validate:"required"`
	Answers map[string]any `json:"answers" validate:"required"`
	Height  *float64       `json:"height" validate:"required"`
	Weight  *float64       `json:"weight" validate:"required"`
	HbA1c   *float64       `json:"hba1c" validate:"required"`
}

func (h *handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.UserByPhone(r.Context(), req.Phone); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Errorw("quiz owner lookup failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	quiz, err := h.store.UpsertQuiz(r.Context(), &model.Quiz{
		Phone:   req.Phone,
		Answers: req.Answers,
		Height:  *req.Height,
		Weight:  *req.Weight,
		HbA1c:   *req.HbA1c,
	})
	if err != nil {
		h.logger.Errorw("save quiz failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	respond(w, r, http.StatusOK, map[string]any{"message": "Quiz saved successfully", "quiz": quiz})
}

func (h *handler) loadQuiz(w http.ResponseWriter, r *http.Request) (*model.Quiz, bool) {
	phone := chi.URLParam(r, "phone")
	quiz, err := h.store.QuizByPhone(r.Context(), phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "Quiz not found")
		return nil, false
	case err != nil:
		h.logger.Errorw("get quiz failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Server error")
		return nil, false
	}
	return quiz, true
}

func (h *handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	if quiz, ok := h.loadQuiz(w, r); ok {
		respond(w, r, http.StatusOK, quiz)
	}
}

func (h *handler) quizSummary(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	summary := openai.LocalSummary(quiz)
	if h.summarizer != nil {
		s, err := h.summarizer.SummarizeQuiz(r.Context(), quiz)
		switch {
		case errors.Is(err, openai.ErrClientNotInitialised):
		case err != nil:
			h.logger.Warnw("quiz summary fell back to local", "phone", quiz.Phone, "error", err)
		default:
			summary = s
		}
	}
	respond(w, r, http.StatusOK, map[string]string{"summary": summary})
}

type cartRequest struct {
	Phone string           `json:"phone" validate:"required"`
	Items []model.CartItem `json:"items" validate:"required"`
}

func (h *handler) saveCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request")
		return
	}

	cart, err := h.store.SaveCart(r.Context(), req.Phone, req.Items)
	if err != nil {
		h.logger.Errorw("save cart failed", "phone", req.Phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Internal error")
		return
	}
	respond(w, r, http.StatusOK, map[string]any{"message": "Cart saved", "cart": cart})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	cart, err := h.store.CartByPhone(r.Context(), phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond(w, r, http.StatusNotFound, map[string][]model.CartItem{"items": {}})
	case err != nil:
		h.logger.Errorw("get cart failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Internal error")
	default:
		respond(w, r, http.StatusOK, cart)
	}
}
