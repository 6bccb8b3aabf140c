// Package api exposes the mobile app's HTTP routes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/pathakanu/muditam/internal/otp"
	"github.com/pathakanu/muditam/internal/shopify"
	"github.com/pathakanu/muditam/internal/store"
)

// Commerce is the storefront backing the shop routes.
type Commerce interface {
	ListProducts(ctx context.Context) ([]shopify.ProductSummary, error)
	GetProduct(ctx context.Context, id string) (*shopify.ProductDetail, error)
	CreateCart(ctx context.Context, lines []shopify.CartLine) (*shopify.CheckoutCart, error)
	OrdersByPhone(ctx context.Context, phone string) ([]shopify.Order, error)
}

// Summarizer turns a quiz into a short description for the user.
type Summarizer interface {
	SummarizeQuiz(ctx context.Context, quiz *model.Quiz) (string, error)
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Store      *store.Store
	OTP        *otp.Service
	Commerce   Commerce
	Summarizer Summarizer
	Logger     *zap.SugaredLogger

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	// SendLimiter and VerifyLimiter default to 5 per minute and 6 per 30 seconds.
	SendLimiter   *otp.Limiter
	VerifyLimiter *otp.Limiter
}

type handler struct {
	store      *store.Store
	otp        *otp.Service
	commerce   Commerce
	summarizer Summarizer
	logger     *zap.SugaredLogger
}

// NewRouter builds the application router.
func NewRouter(d Deps) http.Handler {
	if d.SendLimiter == nil {
		d.SendLimiter = otp.NewLimiter(5, time.Minute)
	}
	if d.VerifyLimiter == nil {
		d.VerifyLimiter = otp.NewLimiter(6, 30*time.Second)
	}
	h := &handler{
		store:      d.Store,
		otp:        d.OTP,
		commerce:   d.Commerce,
		summarizer: d.Summarizer,
		logger:     d.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.CleanPath,
		requestLogger(d.Logger, "api"),
		middleware.Timeout(30*time.Second),
		render.SetContentType(render.ContentTypeJSON),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]bool{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth/otp", func(r chi.Router) {
			r.With(rateLimit(d.SendLimiter)).Post("/send", h.sendOTP)
			r.With(rateLimit(d.VerifyLimiter)).Post("/verify", h.verifyOTP)
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/", h.createUser)
			r.Post("/update", h.updateUser)
			r.Post("/mark-purchased", h.markPurchased)
			r.Post("/save-token", h.savePushToken)
			r.Post("/video-feedback", h.videoFeedback)
			r.Post("/kit-progress/update", h.updateKitProgress)
			r.Get("/purchase-status/{phone}", h.purchaseStatus)
			r.Get("/kit-progress/{phone}", h.kitProgress)
			r.Get("/{phone}", h.getUser)
		})

		r.Route("/reminder", func(r chi.Router) {
			r.Post("/", h.upsertReminder)
			r.Get("/{userId}", h.listReminders)
			r.Delete("/{userId}/{type}", h.deleteReminder)
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/submit", h.submitQuiz)
			r.Get("/{phone}", h.getQuiz)
			r.Get("/{phone}/summary", h.quizSummary)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/save", h.saveCart)
			r.Get("/{phone}", h.getCart)
		})

		r.Route("/shopify", func(r chi.Router) {
			r.Get("/products", h.listProducts)
			r.Get("/product/{id}", h.getProduct)
			r.Post("/cart", h.createCheckout)
			r.Get("/orders/{phone}", h.listOrders)
		})
	})

	return r
}
