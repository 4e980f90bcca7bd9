package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"nutrimind_server/routes"
	"nutrimind_server/services"
	"nutrimind_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// In-memory state and remote sync
	stateService := services.NewStateService()
	syncService := services.NewSyncService(services.NewDynamoStore(dynamoService), stateService)
	stateService.SetOnChange(syncService.NotifyChange)

	// Generation backend
	geminiService := services.NewGeminiService(os.Getenv("GEMINI_API_KEY"))
	mealGenService := services.NewMealGenService(geminiService, stateService)

	// Image cache: durable tier is S3 when a bucket is configured,
	// otherwise SQLite on local disk
	var cacheStore services.CacheStore
	if bucket := os.Getenv("S3_BUCKET_NAME"); bucket != "" {
		cacheStore = services.NewS3Store(services.InitializeS3Client(), bucket, "meal-images/")
		log.Printf("Using S3 image cache in bucket %s", bucket)
	} else {
		cachePath := os.Getenv("IMAGE_CACHE_PATH")
		if cachePath == "" {
			cachePath = filepath.Join("data", "image_cache.db")
		}
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			log.Fatalf("Failed to create cache directory: %v", err)
		}
		sqliteStore, err := services.NewSQLiteStore(cachePath)
		if err != nil {
			log.Fatalf("Failed to open image cache: %v", err)
		}
		defer sqliteStore.Close()
		cacheStore = sqliteStore
	}
	imageService := services.NewImageService(geminiService, cacheStore)

	// Domain services
	profileService := services.NewUserProfileService(stateService, syncService)
	trackingService := services.NewTrackingService(stateService)
	alertService := services.NewAlertService(stateService)

	// Socket.IO server: sync status is pushed to each user's room
	socketServer := socket.NewSocketServer()
	syncService.Broadcast = func(userID string, status services.SyncStatus) {
		socketServer.BroadcastToRoom("/", userID, "syncStatus", status)
	}
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Printf("❌ Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterUserProfileRoutes(r, profileService)
	routes.RegisterPlanRoutes(r, mealGenService, stateService, imageService)
	routes.RegisterTrackingRoutes(r, trackingService)
	routes.RegisterImageRoutes(r, imageService)
	routes.RegisterSyncRoutes(r, syncService)
	routes.RegisterAlertRoutes(r, alertService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
