package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nightowl/sleepsite/internal/config"
	"github.com/nightowl/sleepsite/internal/handlers"
	appMiddleware "github.com/nightowl/sleepsite/internal/middleware"
	"github.com/nightowl/sleepsite/internal/services"
	"github.com/nightowl/sleepsite/internal/session"
)

func main() {
	cfg := config.Load()

	var (
		userStore  services.UserStore
		sleepStore services.SleepStore
		forumStore services.ForumStore
	)

	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		client, err := services.DialMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())

		users, err := services.NewMongoUserService(ctx, client, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to initialize user service: %v", err)
		}
		sleeps, err := services.NewMongoSleepService(ctx, client, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to initialize sleep service: %v", err)
		}
		forum, err := services.NewMongoForumService(ctx, client, cfg.MongoDBName)
		if err != nil {
			log.Fatalf("Failed to initialize forum service: %v", err)
		}
		userStore, sleepStore, forumStore = users, sleeps, forum
	} else {
		log.Printf("MONGO_URI not set, using in-memory stores")
		userStore = services.NewUserService()
		sleepStore = services.NewSleepService()
		forumStore = services.NewForumService()
	}

	sessions := session.NewManager(cfg.SessionSecret)
	oauth := services.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleDiscoveryURL, cfg.AllowedDomain)
	chart := services.NewChartService(cfg.ChartPath)

	var mailer *services.SendGridMailer
	if cfg.SendGridAPIKey != "" {
		mailer = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.NotifyFromEmail, cfg.NotifyToEmail)
	}

	chartURL := strings.TrimPrefix(cfg.ChartPath, ".")

	renderer := handlers.NewRenderer(sessions)
	authHandler := handlers.NewAuthHandler(renderer, oauth, userStore, sessions)
	profileHandler := handlers.NewProfileHandler(renderer, userStore, mailer, sessions)
	sleepHandler := handlers.NewSleepHandler(renderer, sleepStore, chart, chartURL, sessions)
	forumHandler := handlers.NewForumHandler(renderer, forumStore, sessions)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Public routes
	r.Get("/", authHandler.Home)
	r.Get("/overview", authHandler.Overview)
	r.Get("/login", authHandler.Login)
	r.Get("/login/callback", authHandler.Callback)

	// Logged-in routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireLogin(sessions, userStore))

		r.Get("/logout", authHandler.Logout)

		r.Get("/myprofile", profileHandler.MyProfile)
		r.Get("/myprofile/edit", profileHandler.EditProfile)
		r.Post("/myprofile/edit", profileHandler.EditProfile)
		r.Get("/consent", profileHandler.Consent)
		r.Post("/consent", profileHandler.Consent)

		r.Get("/sleep/new", sleepHandler.New)
		r.Post("/sleep/new", sleepHandler.New)
		r.Get("/sleep/edit/{sleepID}", sleepHandler.Edit)
		r.Post("/sleep/edit/{sleepID}", sleepHandler.Edit)
		r.Get("/sleep/delete/{sleepID}", sleepHandler.Delete)
		r.Get("/sleep/{sleepID}", sleepHandler.Show)
		r.Get("/sleeps", sleepHandler.List)
		r.Get("/sleepgraph", sleepHandler.Graph)

		r.Get("/blogs", forumHandler.ListBlogs)
		r.Get("/blog/list", forumHandler.ListBlogs)
		r.Get("/blog/new", forumHandler.NewBlog)
		r.Post("/blog/new", forumHandler.NewBlog)
		r.Get("/blog/edit/{blogID}", forumHandler.EditBlog)
		r.Post("/blog/edit/{blogID}", forumHandler.EditBlog)
		r.Get("/blog/delete/{blogID}", forumHandler.DeleteBlog)
		r.Get("/blog/{blogID}", forumHandler.ShowBlog)

		r.Get("/comment/new/{blogID}", forumHandler.NewComment)
		r.Post("/comment/new/{blogID}", forumHandler.NewComment)
		r.Get("/comment/edit/{commentID}", forumHandler.EditComment)
		r.Post("/comment/edit/{commentID}", forumHandler.EditComment)
		r.Get("/comment/delete/{commentID}", forumHandler.DeleteComment)
	})

	// Serve the static dir (holds the shared sleep chart artifact).
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	log.Printf("Sleep Site starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
