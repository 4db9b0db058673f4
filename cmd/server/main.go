package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"blog-platform/internal/analytics"
	"blog-platform/internal/auth"
	"blog-platform/internal/chat"
	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/handlers"
	"blog-platform/internal/services"
	"blog-platform/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize stores
	db, err := database.NewPostgresDB(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	messages, err := database.NewRedisMessageStore(cfg.Redis.URL, cfg.Chat.Retention)
	if err != nil {
		logger.Fatal("Failed to connect to redis: %v", err)
	}
	defer messages.Close()

	// Initialize services
	authService := auth.NewService(db, cfg)
	postService := services.NewPostService(db)
	analyticsService := analytics.NewService(db, db)

	// Initialize chat gateway
	registry := chat.NewRegistry()
	gateway := chat.NewGateway(registry, messages, db, authService, cfg.Chat)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	postHandlers := handlers.NewPostHandlers(postService, authService)
	eventHandlers := handlers.NewEventHandlers(analyticsService)
	wsHandlers := handlers.NewWebSocketHandlers(gateway)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, authHandlers, postHandlers, eventHandlers, wsHandlers)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)
	printAPIEndpoints()

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")
}

func setupRoutes(mux *http.ServeMux, authHandlers *handlers.AuthHandlers, postHandlers *handlers.PostHandlers, eventHandlers *handlers.EventHandlers, wsHandlers *handlers.WebSocketHandlers) {
	// User routes
	mux.HandleFunc("/api/v1/user/signup", requireMethod(http.MethodPost, authHandlers.Signup))
	mux.HandleFunc("/api/v1/user/login", requireMethod(http.MethodPost, authHandlers.Login))

	// Post routes
	mux.HandleFunc("/api/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			postHandlers.ListPosts(w, r)
		case http.MethodPost:
			postHandlers.CreatePost(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Post sub-routes: /api/v1/posts/{id}
	mux.HandleFunc("/api/v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			postHandlers.GetPost(w, r)
		case http.MethodPatch:
			postHandlers.UpdatePost(w, r)
		case http.MethodDelete:
			postHandlers.DeletePost(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Event routes
	mux.HandleFunc("/api/v1/events", requireMethod(http.MethodPost, eventHandlers.TrackEvent))
	mux.HandleFunc("/api/v1/events/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 6 || parts[5] == "" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		switch parts[4] {
		case "totalViews":
			eventHandlers.TotalViews(w, r)
		case "dailyViews":
			eventHandlers.DailyViews(w, r)
		case "dailyDurations":
			eventHandlers.DailyDurations(w, r)
		default:
			http.Error(w, "endpoint not found", http.StatusNotFound)
		}
	})

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func requireMethod(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func printAPIEndpoints() {
	logger.Info("🔗 API endpoints:")
	logger.Info("   POST /api/v1/user/signup")
	logger.Info("   POST /api/v1/user/login")
	logger.Info("   GET  /api/v1/posts")
	logger.Info("   POST /api/v1/posts")
	logger.Info("   GET  /api/v1/posts/{id}")
	logger.Info("   PATCH /api/v1/posts/{id}")
	logger.Info("   DELETE /api/v1/posts/{id}")
	logger.Info("   POST /api/v1/events")
	logger.Info("   GET  /api/v1/events/totalViews/{postId}")
	logger.Info("   GET  /api/v1/events/dailyViews/{postId}")
	logger.Info("   GET  /api/v1/events/dailyDurations/{postId}")
}
