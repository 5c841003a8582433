package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"talklens/common"
	"talklens/config"
	"talklens/stub"
)

// Development backend: serves the session API against Redis and an
// S3-compatible blob store, generating placeholder artifacts on upload.
func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx := context.Background()

	registry, err := stub.NewRegistryFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	blobs, err := common.NewS3(ctx, common.S3Config{
		Region:       config.GetEnvOrDefault("AWS_REGION", "us-east-1"),
		Profile:      config.GetEnvOrDefault("AWS_PROFILE", ""),
		Endpoint:     config.GetEnvOrDefault("S3_ENDPOINT", ""),
		UsePathStyle: config.GetEnvOrDefault("S3_ENDPOINT", "") != "",
	})
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	bucket := config.GetEnvOrDefault("S3_BUCKET", "talklens-dev")
	server := stub.NewServer(registry, blobs, bucket)

	port := config.GetEnvOrDefault("PORT", "8080")
	log.Printf("Stub backend listening on :%s", port)
	if err := server.NewRouter().Run(":" + port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
