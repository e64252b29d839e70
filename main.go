package main

import (
	"fmt"
	"log"
	"os"
	"time"

	language "cloud.google.com/go/language/apiv2"
	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"civicfix/ai"
	"civicfix/cronjobs"
	"civicfix/db"
	"civicfix/lifecycle"
	"civicfix/nlp"
	"civicfix/resolution"
	"civicfix/routes"
	"civicfix/storage"
	"civicfix/verification"
)

// faceVerificationFreshness bounds how old a passing gate artifact may be and
// still unlock resolution.
const faceVerificationFreshness = 10 * time.Minute

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	// Init firestore
	firestoreClient, err := db.InitFirestore()
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer db.CloseFirestore() // Firestore client is closed on exit

	// Image storage: Cloud Storage bucket when configured, local disk otherwise.
	var uploader resolution.Storage
	uploadsDir := ""
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		cloudUploader, err := storage.NewCloudUploader(bucket)
		if err != nil {
			log.Fatalf("Failed to initialize cloud storage: %v", err)
		}
		defer storage.CloseStorageClient()
		uploader = cloudUploader
		fmt.Println("Using Cloud Storage bucket:", bucket)
	} else {
		uploadsDir = "uploads"
		uploader = storage.NewLocalUploader(uploadsDir)
		fmt.Println("Using local uploads directory")
	}

	// Natural Language client is optional; without credentials reports just
	// skip entity tags.
	var langClient *language.Client
	if os.Getenv("NATURAL_LANGUAGE_CREDENTIALS") != "" {
		langClient, err = nlp.InitLanguageClient()
		if err != nil {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
		defer nlp.CloseLanguageClient()
	}

	// Face verification gate: local cascade and remote vision confirmer, each
	// enabled by its own configuration.
	var local, remote verification.Detector
	if cascadePath := os.Getenv("FACE_CASCADE_PATH"); cascadePath != "" {
		pigoDetector, err := verification.NewPigoDetector(cascadePath)
		if err != nil {
			log.Fatalf("Failed to load face cascade: %v", err)
		}
		local = pigoDetector
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		fmt.Println("OPENAI_API_KEY loaded")
		remote = verification.NewOpenAIDetector(openai.NewClient(apiKey))
	}
	gate := verification.NewGate(local, remote, os.Getenv("FACE_VERIFICATION_BYPASS") == "true")

	aiClient := ai.NewClient(os.Getenv("AI_SERVICE_URL"), ai.DefaultUrgencyConfig())

	store := db.NewReportStore(firestoreClient)
	engine := lifecycle.NewEngine(store)
	verifier := resolution.NewVerifier(resolution.Config{
		Store:     store,
		Engine:    engine,
		Storage:   uploader,
		Artifacts: db.NewVerificationStore(firestoreClient),
		Policy: resolution.Policy{
			RequireFaceVerification: os.Getenv("REQUIRE_FACE_VERIFICATION") == "true",
			FreshnessWindow:         faceVerificationFreshness,
		},
	})

	// Initialize cron jobs
	cronjobs.InitCronJobs(firestoreClient)

	r := routes.SetupRouter(routes.Deps{
		Firestore:  firestoreClient,
		Engine:     engine,
		Verifier:   verifier,
		FaceGate:   gate,
		Uploader:   uploader,
		AI:         aiClient,
		Language:   langClient,
		UploadsDir: uploadsDir,
	})
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
