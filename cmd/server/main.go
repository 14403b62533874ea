package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"

	"github.com/bengalmatrimony/backend/internal/config"
	appMiddleware "github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/server"
	"github.com/bengalmatrimony/backend/internal/services"
	"github.com/bengalmatrimony/backend/internal/session"
)

type stores struct {
	users      services.UserStore
	biodatas   services.BiodataStore
	favourites services.FavouriteStore
	payments   services.PaymentLedger
	premium    services.PremiumRequestStore
	messages   services.MessageStore
	stories    services.StoryStore
	tx         services.Transactor
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, client, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	if client != nil {
		defer client.Disconnect(context.Background())
	}

	policy, err := services.ParseDisclosurePolicy(cfg.DisclosurePolicy)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Session error: %v", err)
	}

	creds, err := cfg.FirebaseCredentials()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	var verifier appMiddleware.IdentityVerifier
	if fv, err := appMiddleware.NewFirebaseVerifier(context.Background(), appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: creds,
	}); err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	} else {
		verifier = fv
	}

	if cfg.StripeSecretKey == "" {
		log.Printf("Warning: STRIPE_SECRET_KEY not set, payments will fail")
	}

	imageService, err := services.NewImageService(cfg.UploadDir, cfg.DataDir)
	if err != nil {
		log.Fatalf("Image storage error: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := server.Deps{
		AllowedOrigins:  cfg.AllowedOrigins,
		UploadDir:       cfg.UploadDir,
		MaxUploadSizeMB: cfg.MaxUploadSizeMB,

		Sessions: sessions,
		Verifier: verifier,

		Users:      st.users,
		Biodatas:   st.biodatas,
		Favourites: st.favourites,
		Payments:   st.payments,
		Messages:   st.messages,
		Stories:    st.stories,

		Gate:     services.NewContactGate(st.payments, policy),
		Premium:  services.NewPremiumWorkflow(st.premium, st.users, st.biodatas, st.tx),
		Accounts: services.NewAccountService(st.users, st.favourites, st.premium, st.tx),
		Checkout: services.NewCheckout(services.NewStripeProvider(cfg.StripeSecretKey), st.payments, cfg.PaymentCurrency, cfg.UnlockPriceCents),
		Images:   imageService,

		Registry: reg,
	}

	if cfg.ModerationBucket != "" {
		moderator, closeFn, err := newModerator(context.Background(), cfg, creds, st.users)
		if err != nil {
			log.Printf("Warning: inline moderation disabled: %v", err)
		} else {
			defer closeFn()
			deps.Moderator = moderator
		}
	}
	if cfg.RecaptchaSecret != "" {
		deps.Captcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret, originHosts(cfg.AllowedOrigins)...)
	}
	if cfg.SendGridAPIKey != "" {
		deps.Forwarder = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SupportFromEmail, cfg.SupportToEmail)
	}

	log.Printf("Bengal Matrimony API starting on %s (env=%s, disclosure=%s)", cfg.ServerAddress, cfg.AppEnv, policy)
	if err := http.ListenAndServe(cfg.ServerAddress, server.NewRouter(deps)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// openStores connects to MongoDB when MONGO_URI is set and falls back to
// in-memory stores otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*stores, *mongo.Client, error) {
	if cfg.MongoURI == "" {
		log.Printf("Warning: MONGO_URI not set, using in-memory stores")
		return &stores{
			users:      services.NewUserService(),
			biodatas:   services.NewBiodataService(),
			favourites: services.NewFavouriteService(),
			payments:   services.NewPaymentService(),
			premium:    services.NewPremiumRequestService(),
			messages:   services.NewMessageService(),
			stories:    services.NewStoryService(),
			tx:         services.NoopTransactor{},
		}, nil, nil
	}

	client, db, err := services.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	biodatas, err := services.NewMongoBiodataService(ctx, db)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}
	return &stores{
		users:      services.NewMongoUserService(ctx, db),
		biodatas:   biodatas,
		favourites: services.NewMongoFavouriteService(ctx, db),
		payments:   services.NewMongoPaymentService(ctx, db),
		premium:    services.NewMongoPremiumRequestService(ctx, db),
		messages:   services.NewMongoMessageService(ctx, db),
		stories:    services.NewMongoStoryService(ctx, db),
		tx:         services.NewMongoTransactor(ctx, client),
	}, client, nil
}

func newModerator(ctx context.Context, cfg *config.Config, creds []byte, users services.UserStore) (services.ImageModerator, func(), error) {
	var opts []option.ClientOption
	if len(creds) > 0 {
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	detector, err := services.NewVisionDetector(ctx, opts...)
	if err != nil {
		gcs.Close()
		return nil, nil, err
	}

	objects := services.NewGCSObjects(gcs, cfg.ModerationBucket)
	return services.NewModerationService(detector, objects, cfg.ModerationBucket, users), func() { gcs.Close() }, nil
}

// originHosts turns CORS origins into the hostnames a captcha may be
// solved on.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Hostname() != "" {
			hosts = append(hosts, u.Hostname())
		}
	}
	return hosts
}
