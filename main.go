package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Rafael-TF/EffiDo/handlers"
	"github.com/Rafael-TF/EffiDo/logging"
	"github.com/Rafael-TF/EffiDo/middleware"
	"github.com/Rafael-TF/EffiDo/services"
	"github.com/Rafael-TF/EffiDo/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting EffiDo backend...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "effido"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	userCollection := client.Database(mongoDBName).Collection("users")
	taskCollection := client.Database(mongoDBName).Collection("tasks")

	emailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EmailServiceCB",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	mailer := utils.NewMailer(emailBreaker)

	// Rate limiting is optional: without REDIS_ADDR the auth endpoints run
	// unlimited, which keeps local development free of a Redis dependency.
	var limiter *middleware.Limiter
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Logger.Warnf("Event ID: REDIS_UNAVAILABLE, Description: Redis ping failed, rate limiting disabled: %v", err)
		} else {
			limiter = middleware.NewLimiter(redisClient, "ratelimit:auth:")
			logging.Logger.Infof("Event ID: REDIS_CONNECTED, Description: Rate limiting enabled via Redis at %s", redisAddr)
		}
	}

	jwtService := &services.JWTService{}
	statsService := services.NewStatsService(userCollection, taskCollection)
	taskService := services.NewTaskService(taskCollection, statsService)
	userService := services.NewUserService(userCollection, taskCollection, jwtService, mailer)

	authHandler := handlers.NewAuthHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService, statsService)

	r := mux.NewRouter()

	authLimit := middleware.RateLimitMiddleware(limiter, 10, time.Minute)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.Handle("/register", authLimit(http.HandlerFunc(authHandler.Register))).Methods(http.MethodPost)
	auth.Handle("/login", authLimit(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	auth.Handle("/verify-email/{token}", authLimit(http.HandlerFunc(authHandler.VerifyEmail))).Methods(http.MethodGet)
	auth.Handle("/refresh-token", authLimit(http.HandlerFunc(authHandler.RefreshToken))).Methods(http.MethodPost)
	auth.Handle("/forgot-password", authLimit(http.HandlerFunc(authHandler.ForgotPassword))).Methods(http.MethodPost)
	auth.Handle("/reset-password/{token}", authLimit(http.HandlerFunc(authHandler.ResetPassword))).Methods(http.MethodPost)
	auth.Handle("/logout", middleware.JWTAuthMiddleware(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	tasks := r.PathPrefix("/api/tasks").Subrouter()
	tasks.Use(middleware.JWTAuthMiddleware)
	tasks.HandleFunc("", taskHandler.GetAllTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", taskHandler.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/prioritized", taskHandler.GetPrioritizedTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(middleware.JWTAuthMiddleware)
	users.HandleFunc("/profile", userHandler.GetProfile).Methods(http.MethodGet)
	users.HandleFunc("/profile", userHandler.UpdateProfile).Methods(http.MethodPut)
	users.HandleFunc("/change-password", userHandler.ChangePassword).Methods(http.MethodPut)
	users.HandleFunc("/account", userHandler.DeleteAccount).Methods(http.MethodDelete)
	users.HandleFunc("/avatar", userHandler.UploadAvatar).Methods(http.MethodPost)
	users.HandleFunc("/stats", userHandler.GetStats).Methods(http.MethodGet)
	users.HandleFunc("/achievements", userHandler.GetAchievements).Methods(http.MethodGet)

	avatarDir := os.Getenv("AVATAR_DIR")
	if avatarDir == "" {
		avatarDir = "public/avatars"
	}
	r.PathPrefix("/avatars/").Handler(http.StripPrefix("/avatars/", http.FileServer(http.Dir(avatarDir))))

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", serverPort),
		Handler:      enableCORS(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost:%s", serverPort)

	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
