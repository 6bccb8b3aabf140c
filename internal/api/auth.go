package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/pathakanu/muditam/internal/otp"
)

type otpResponse struct {
	OK      bool           `json:"ok"`
	Status  string         `json:"status,omitempty"`
	Cached  bool           `json:"cached,omitempty"`
	Test    bool           `json:"test,omitempty"`
	Message string         `json:"message,omitempty"`
	Raw     map[string]any `json:"raw,omitempty"`
}

type otpRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, http.StatusBadRequest, otpResponse{Message: "invalid JSON body"})
		return
	}

	out, err := h.otp.Send(r.Context(), req.Phone)
	switch {
	case errors.Is(err, otp.ErrPhoneRequired):
		respond(w, r, http.StatusBadRequest, otpResponse{Message: err.Error()})
	case err != nil:
		respond(w, r, http.StatusBadGateway, otpResponse{Message: otp.ErrSendFailed.Error()})
	case !out.OK:
		respond(w, r, http.StatusBadRequest, otpResponse{Message: out.Message, Raw: out.Raw})
	default:
		respond(w, r, http.StatusOK, otpResponse{OK: true, Status: out.Status, Test: out.Test})
	}
}

func (h *handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, http.StatusBadRequest, otpResponse{Message: "invalid JSON body"})
		return
	}

	out, err := h.otp.Verify(r.Context(), req.Phone, req.OTP)
	switch {
	case errors.Is(err, otp.ErrCodeRequired):
		respond(w, r, http.StatusBadRequest, otpResponse{Message: err.Error()})
	case err != nil:
		respond(w, r, http.StatusBadRequest, otpResponse{Message: otp.ErrVerifyFailed.Error()})
	case !out.OK:
		respond(w, r, http.StatusBadRequest, otpResponse{Message: out.Message, Raw: out.Raw})
	default:
		respond(w, r, http.StatusOK, otpResponse{
			OK:     true,
			Status: string(out.Status),
			Cached: out.Cached,
			Test:   out.Test,
		})
	}
}
