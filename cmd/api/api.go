package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"welp/docs" //this is required to generate swagger docs
	"welp/internal/auth"
	"welp/internal/domain/accesscontrol"
	"welp/internal/domain/billing"
	"welp/internal/domain/claims"
	"welp/internal/domain/conversations"
	"welp/internal/domain/credits"
	"welp/internal/geocode"
	"welp/internal/mailer"
	"welp/internal/matching"
	"welp/internal/notifications"
	"welp/internal/payments"
	"welp/internal/ratelimiter"
	"welp/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	push          notifications.PushSender
	gateway       payments.Gateway
	geocoder      *geocode.Client
	shareCodes    *store.ShareCodec

	// matchPolicy ranks candidates for the feed; claimGate decides whether
	// a claim binds. The two are deliberately different policies.
	matchPolicy matching.Policy
	claimGate   matching.Policy

	conversations conversations.Store
	credits       credits.Store
	claims        claims.Store
	access        accesscontrol.Store
	billing       billing.Store
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	stripe      stripeConfig
	geocode     geocodeConfig
	credits     creditsConfig
	shareSalt   string
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret string
	secret        string
	iss           string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type stripeConfig struct {
	secretKey     string
	webhookSecret string
}

type geocodeConfig struct {
	baseURL   string
	cacheSize int
}

type creditsConfig struct {
	unlockCost     int
	pricePerCredit int64 // cents
	currency       string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		// Anyone with the share link can read the public shape of a review.
		r.Get("/reviews/shared/{shareCode}", app.getSharedReviewHandler)

		// Payment provider callback, verified by signature instead of JWT.
		r.Post("/payments/webhook", app.paymentWebhookHandler)

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Patch("/", app.updateUserHandler)
			r.Post("/avatar", app.uploadAvatarHandler)
			r.Post("/logout", app.logoutHandler)

			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)

			r.Post("/verification/request", app.requestVerificationHandler)
			r.Post("/verification/confirm", app.confirmVerificationHandler)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.With(app.RequireUserType(store.UserBusiness)).Post("/", app.createReviewHandler)
			r.With(app.RequireUserType(store.UserBusiness)).Get("/mine", app.listBusinessReviewsHandler)

			r.Route("/{reviewID}", func(r chi.Router) {
				r.Get("/", app.getReviewHandler)
				r.With(app.RequireUserType(store.UserBusiness)).Delete("/", app.deleteReviewHandler)
				r.With(app.RequireUserType(store.UserBusiness)).Post("/photos", app.uploadReviewPhotoHandler)
				r.With(app.RequireUserType(store.UserBusiness)).Delete("/photos", app.deleteReviewPhotoHandler)
				r.Post("/share", app.createShareCodeHandler)

				r.With(app.RequireUserType(store.UserCustomer)).Post("/claim", app.claimReviewHandler)
				r.With(app.RequireUserType(store.UserCustomer)).Post("/unlock", app.unlockReviewHandler)

				r.Route("/conversation", func(r chi.Router) {
					r.Get("/", app.getConversationHandler)
					r.With(app.RequireUserType(store.UserCustomer)).Post("/", app.startConversationHandler)
					r.Post("/messages", app.addMessageHandler)
					r.Patch("/messages/{messageID}", app.editMessageHandler)
					r.Delete("/messages/{messageID}", app.deleteMessageHandler)
				})
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.With(app.RequireUserType(store.UserCustomer)).Get("/", app.getMatchedReviewsHandler)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/balance", app.getCreditBalanceHandler)
			r.Get("/transactions", app.listCreditTransactionsHandler)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/checkout", app.createCheckoutHandler)
			r.Post("/confirm", app.confirmCheckoutHandler)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getSubscriptionHandler)
			r.With(app.RequireUserType(store.UserAdmin)).Put("/{userID}", app.upsertSubscriptionHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
