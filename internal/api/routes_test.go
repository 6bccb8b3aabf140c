package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/pathakanu/muditam/internal/openai"
	"github.com/pathakanu/muditam/internal/shopify"
)

func createUser(t *testing.T, srv *testServer, phone string) model.User {
	t.Helper()
	rec := srv.do(t, http.MethodPost, "/api/user", map[string]string{"phone": phone, "name": "Asha"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[model.User](t, rec)
}

func TestCreateAndGetUser(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	user := createUser(t, srv, "9000000001")
	assert.Equal(t, model.LanguageEnglish, user.PreferredLanguage)
	assert.Equal(t, 1, user.CurrentKitNumber)

	rec := srv.do(t, http.MethodPost, "/api/user", map[string]string{"phone": "9000000001", "name": "Other"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", decodeBody[model.User](t, rec).Name)

	rec = srv.do(t, http.MethodGet, "/api/user/9000000001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, decodeBody[model.User](t, rec).ID)

	rec = srv.do(t, http.MethodGet, "/api/user/9999999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/user", map[string]string{"name": "NoPhone"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "phone is required", decodeBody[errorResponse](t, rec).Error)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	createUser(t, srv, "9000000002")

	rec := srv.do(t, http.MethodPost, "/api/user/update", map[string]string{"phone": "9000000002", "preferredLanguage": "Tamil"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/user/update", map[string]string{
		"phone":             "9000000002",
		"preferredLanguage": "Hindi",
		"avatar":            "https://cdn.example.com/a.png",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[userEnvelope](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Hindi", resp.User.PreferredLanguage)
	assert.Equal(t, "Asha", resp.User.Name)

	rec = srv.do(t, http.MethodPost, "/api/user/update", map[string]string{"phone": "9000000003", "name": "Ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeBody[userEnvelope](t, rec).Success)
}

func TestPurchaseFlow(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/user/purchase-status/9000000004", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasPurchased":false}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/user/mark-purchased", map[string]any{
		"phone":               "9000000004",
		"purchasedProductIds": []string{"p1", "p2", "p1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/user/purchase-status/9000000004", nil)
	assert.JSONEq(t, `{"hasPurchased":true}`, rec.Body.String())

	user, err := srv.store.UserByPhone(context.Background(), "9000000004")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, user.PurchasedProducts)
}

func TestKitProgress(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	createUser(t, srv, "9000000005")

	rec := srv.do(t, http.MethodGet, "/api/user/kit-progress/9000000005", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"currentKit":1,"completedKits":[]}`, rec.Body.String())

	for _, kit := range []int{2, 3, 3} {
		rec = srv.do(t, http.MethodPost, "/api/user/kit-progress/update", map[string]any{"phone": "9000000005", "newKitNumber": kit})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/user/kit-progress/9000000005", nil)
	assert.JSONEq(t, `{"currentKit":3,"completedKits":[1,2]}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/user/kit-progress/update", map[string]any{"phone": "9000000005"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/user/kit-progress/9000000099", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveTokenAndVideoFeedback(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	user := createUser(t, srv, "9000000006")

	token := "ExponentPushToken[abc123]"
	rec := srv.do(t, http.MethodPost, "/api/user/save-token", map[string]any{"userId": user.ID, "expoPushToken": token})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := srv.store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, token, stored.ExpoPushToken)

	rec = srv.do(t, http.MethodPost, "/api/user/save-token", map[string]any{"userId": user.ID + 100, "expoPushToken": token})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/user/video-feedback", map[string]string{"phone": "9000000006", "videoId": "v1", "status": "like"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodPost, "/api/user/video-feedback", map[string]string{"phone": "9000000006", "videoId": "v1", "status": "dislike"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"likedVideos":[{"videoId":"v1","status":"dislike"}]}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/user/video-feedback", map[string]string{"phone": "9000000006", "videoId": "v1", "status": "meh"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReminderRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	user := createUser(t, srv, "9000000007")

	for _, bad := range []string{"7:30", "24:00", "12:60", "noon", ""} {
		rec := srv.do(t, http.MethodPost, "/api/reminder", map[string]any{"userId": user.ID, "type": "water", "time": bad})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "time %q", bad)
	}

	rec := srv.do(t, http.MethodPost, "/api/reminder", map[string]any{"userId": user.ID + 100, "type": "water", "time": "07:30"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, hhmm := range []string{"07:30", "08:15"} {
		rec = srv.do(t, http.MethodPost, "/api/reminder", map[string]any{"userId": user.ID, "type": "water", "time": hhmm})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}

	path := fmt.Sprintf("/api/reminder/%d", user.ID)
	rec = srv.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reminders := decodeBody[[]model.Reminder](t, rec)
	require.Len(t, reminders, 1)
	assert.Equal(t, "08:15", reminders[0].Time)

	rec = srv.do(t, http.MethodGet, "/api/reminder/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, path+"/water", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodDelete, path+"/water", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	quiz := map[string]any{
		"phone":   "9000000008",
		"answers": map[string]any{"diet": "veg"},
		"height":  170,
		"weight":  72,
		"hba1c":   7.2,
	}
	rec := srv.do(t, http.MethodPost, "/api/quiz/submit", quiz)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	createUser(t, srv, "9000000008")
	rec = srv.do(t, http.MethodPost, "/api/quiz/submit", quiz)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/quiz/submit", map[string]any{"phone": "9000000008", "answers": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/quiz/9000000008", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decodeBody[model.Quiz](t, rec)
	assert.Equal(t, 7.2, stored.HbA1c)
	assert.Equal(t, "veg", stored.Answers["diet"])

	rec = srv.do(t, http.MethodGet, "/api/quiz/9000000008/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["summary"], "BMI is 24.9")

	rec = srv.do(t, http.MethodGet, "/api/quiz/9000000099", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizSummaryUsesSummarizer(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		summarizer fakeSummarizer
		want       string
	}{
		"model answer":           {fakeSummarizer{summary: "You are doing well."}, "You are doing well."},
		"falls back on error":    {fakeSummarizer{err: errors.New("rate limited")}, "BMI is"},
		"falls back without key": {fakeSummarizer{err: openai.ErrClientNotInitialised}, "HbA1c of 5.5% is in the normal range"},
	} {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, tc.summarizer)
			createUser(t, srv, "9000000009")
			rec := srv.do(t, http.MethodPost, "/api/quiz/submit", map[string]any{
				"phone": "9000000009", "answers": map[string]any{}, "height": 160, "weight": 60, "hba1c": 5.5,
			})
			require.Equal(t, http.StatusOK, rec.Code)

			rec = srv.do(t, http.MethodGet, "/api/quiz/9000000009/summary", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, decodeBody[map[string]string](t, rec)["summary"], tc.want)
		})
	}
}

func TestCartRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/cart/9000000010", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/cart/save", map[string]any{"phone": "9000000010"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	items := []model.CartItem{{ID: "v1", Title: "Kit", Price: 499, Quantity: 2}}
	rec = srv.do(t, http.MethodPost, "/api/cart/save", map[string]any{"phone": "9000000010", "items": items})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/cart/9000000010", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, items, decodeBody[model.Cart](t, rec).Items)
}

func TestShopifyRoutes(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.commerce.products = []shopify.ProductSummary{{ID: 1, Title: "Kit", Price: "499.00", FirstVariantID: 100}}
	srv.commerce.checkout = &shopify.CheckoutCart{ID: "gid://shopify/Cart/1", CheckoutURL: "https://shop/checkout"}
	srv.commerce.orders = []shopify.Order{{ID: 7, Name: "#1007"}}

	rec := srv.do(t, http.MethodGet, "/api/shopify/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]shopify.ProductSummary](t, rec), 1)

	rec = srv.do(t, http.MethodGet, "/api/shopify/product/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/shopify/cart", map[string]any{"lines": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/shopify/cart", map[string]any{"lines": []map[string]int{{"variantId": 100, "quantity": 0}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/shopify/cart", map[string]any{"lines": []map[string]int{{"variantId": 100, "quantity": 2}}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"gid://shopify/Cart/1","checkoutUrl":"https://shop/checkout"}`, rec.Body.String())
	assert.Equal(t, []shopify.CartLine{{VariantID: 100, Quantity: 2}}, srv.commerce.lines)

	rec = srv.do(t, http.MethodGet, "/api/shopify/orders/9000000011", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#1007", decodeBody[[]shopify.Order](t, rec)[0].Name)
}

func TestShopifyRouteErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	srv.commerce.err = shopify.UserErrors{{Message: "Variant is sold out"}}
	rec := srv.do(t, http.MethodPost, "/api/shopify/cart", map[string]any{"lines": []map[string]int{{"variantId": 1, "quantity": 1}}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Variant is sold out")

	srv.commerce.err = &shopify.APIError{Status: http.StatusNotFound, Body: "{}"}
	rec = srv.do(t, http.MethodGet, "/api/shopify/product/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv.commerce.err = &shopify.APIError{Status: http.StatusBadGateway}
	rec = srv.do(t, http.MethodGet, "/api/shopify/products", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
