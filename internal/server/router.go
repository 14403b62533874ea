package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bengalmatrimony/backend/internal/handlers"
	appMiddleware "github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/services"
	"github.com/bengalmatrimony/backend/internal/session"
)

const metricsNamespace = "bengal_matrimony"

// Deps is everything the HTTP surface needs. Moderator, Captcha and
// Forwarder are optional.
type Deps struct {
	AllowedOrigins  []string
	UploadDir       string
	MaxUploadSizeMB int64

	Sessions *session.Manager
	Verifier appMiddleware.IdentityVerifier

	Users      services.UserStore
	Biodatas   services.BiodataStore
	Favourites services.FavouriteStore
	Payments   services.PaymentLedger
	Messages   services.MessageStore
	Stories    services.StoryStore

	Gate      *services.ContactGate
	Premium   *services.PremiumWorkflow
	Accounts  *services.AccountService
	Checkout  *services.Checkout
	Images    *services.ImageService
	Moderator services.ImageModerator
	Captcha   services.CaptchaVerifier
	Forwarder services.MessageForwarder

	Registry *prometheus.Registry
}

func NewRouter(d Deps) http.Handler {
	sessionHandler := handlers.NewSessionHandler(d.Sessions)
	userHandler := handlers.NewUserHandler(d.Users, d.Premium, d.Accounts, d.Verifier)
	biodataHandler := handlers.NewBiodataHandler(d.Biodatas, d.Stories, d.Gate, d.Moderator)
	favouriteHandler := handlers.NewFavouriteHandler(d.Favourites, d.Biodatas, d.Gate)
	paymentHandler := handlers.NewPaymentHandler(d.Checkout, d.Payments)
	premiumHandler := handlers.NewPremiumHandler(d.Premium)
	contactHandler := handlers.NewContactHandler(d.Messages, d.Captcha, d.Forwarder)
	storyHandler := handlers.NewStoryHandler(d.Stories, d.Biodatas)
	imageHandler := handlers.NewImageHandler(d.Images, d.MaxUploadSizeMB)

	firebaseAuth := appMiddleware.FirebaseAuth(d.Verifier)
	sessionAuth := appMiddleware.SessionAuth(d.Sessions, d.Users)
	optionalSession := appMiddleware.OptionalSession(d.Sessions, d.Users)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.Registry != nil {
		r.Use(appMiddleware.NewMetrics(d.Registry, metricsNamespace).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Firebase ID token routes
	r.Group(func(r chi.Router) {
		r.Use(firebaseAuth)
		r.Post("/session", sessionHandler.Create)
		r.Post("/users", userHandler.Create)
		r.Patch("/users/login", userHandler.UpdateLastSignIn)
	})
	r.Post("/logout", sessionHandler.Logout)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(optionalSession)
		r.Get("/biodatas", biodataHandler.List)
		r.Get("/featured-members", biodataHandler.Featured)
		r.Get("/premium-biodata", biodataHandler.Premium)
		r.Get("/stats", biodataHandler.Stats)
		r.Get("/stories/top", storyHandler.Top)
		r.Post("/contact-message", contactHandler.Submit)
	})

	// Session routes
	r.Group(func(r chi.Router) {
		r.Use(sessionAuth)

		r.Get("/users", userHandler.List)
		r.Get("/user", userHandler.GetByEmail)
		r.Patch("/users/me/profile", userHandler.UpdateMyProfile)
		r.Patch("/dashboard/update-profile", userHandler.UpdateMyProfile)

		r.Get("/biodata", biodataHandler.ListByEmail)
		r.Post("/biodata", biodataHandler.Create)
		r.Get("/biodata/{id}", biodataHandler.Get)
		r.Patch("/biodata/{id}", biodataHandler.Update)
		r.Delete("/biodata/{id}", biodataHandler.Delete)

		r.Post("/favourite", favouriteHandler.Add)
		r.Get("/favourites", favouriteHandler.List)
		r.Delete("/favourite/{id}", favouriteHandler.Delete)

		r.Post("/payments/intent", paymentHandler.CreateIntent)
		r.Post("/create-payment-intent", paymentHandler.CreateIntent)
		r.Post("/payments", paymentHandler.Record)
		r.Get("/payments", paymentHandler.ListMine)

		r.Post("/request-premium", premiumHandler.Submit)
		r.Get("/premium-requests", premiumHandler.List)

		r.Post("/stories", storyHandler.Create)
		r.Get("/stories", storyHandler.List)

		r.Post("/upload", imageHandler.Upload)
		r.Delete("/upload/{imageId}", imageHandler.Delete)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAdmin)

			r.Patch("/users/admin/{id}", userHandler.SetRole)
			r.Patch("/users/premium/{id}", userHandler.SetPremium)
			r.Patch("/users/email/{email}", userHandler.SetPremiumByEmail)
			r.Delete("/users/{id}", userHandler.Delete)

			r.Patch("/premium-requests/{id}", premiumHandler.SetStatus)
			r.Delete("/premium-requests/{id}", premiumHandler.Delete)

			r.Get("/all-payments", paymentHandler.ListAll)

			r.Get("/contact-messages", contactHandler.List)
			r.Delete("/contact-messages/{id}", contactHandler.Delete)

			r.Delete("/stories/{id}", storyHandler.Delete)
		})
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))

	return r
}
