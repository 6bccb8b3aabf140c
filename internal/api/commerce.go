package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pathakanu/muditam/internal/shopify"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.commerce.ListProducts(r.Context())
	if err != nil {
		h.logger.Errorw("list products failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	respond(w, r, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.commerce.GetProduct(r.Context(), id)
	if err != nil {
		var apiErr *shopify.APIError
		switch {
		case errors.Is(err, shopify.ErrInvalidProductID):
			respondError(w, r, http.StatusBadRequest, "Invalid product id")
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
			respondError(w, r, http.StatusNotFound, "Product not found")
		default:
			h.logger.Errorw("get product failed", "id", id, "error", err)
			respondError(w, r, http.StatusInternalServerError, "Failed to fetch product")
		}
		return
	}
	respond(w, r, http.StatusOK, product)
}

type checkoutRequest struct {
	Lines []shopify.CartLine `json:"lines" validate:"required,min=1,dive"`
}

func (h *handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.commerce.CreateCart(r.Context(), req.Lines)
	if err != nil {
		var userErrs shopify.UserErrors
		switch {
		case errors.As(err, &userErrs):
			respond(w, r, http.StatusBadRequest, map[string]any{"error": "Cart rejected", "userErrors": userErrs})
		case errors.Is(err, shopify.ErrEmptyCart):
			respondError(w, r, http.StatusBadRequest, "Cart has no lines")
		default:
			h.logger.Errorw("create checkout failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "Failed to create cart")
		}
		return
	}
	respond(w, r, http.StatusOK, cart)
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	orders, err := h.commerce.OrdersByPhone(r.Context(), phone)
	if err != nil {
		h.logger.Errorw("list orders failed", "phone", phone, "error", err)
		respondError(w, r, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	respond(w, r, http.StatusOK, orders)
}
