package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. A nil return means no
// credentials are configured and push delivery is disabled.
func InitFirebase() *firebase.App {
	ctx := context.Background()

	config := &firebase.Config{
		ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}

	// Check for base64 encoded credentials first
	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		log.Printf("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			log.Printf("Warning: error decoding base64 Firebase credentials: %v", err)
			return nil
		}

		app, err := firebase.NewApp(ctx, config, option.WithCredentialsJSON(decoded))
		if err != nil {
			log.Printf("Warning: error initializing firebase app: %v", err)
			return nil
		}
		return app
	}

	// Fallback to file-based credentials
	credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credFile == "" {
		credFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
	}
	if credFile == "" {
		log.Println("Warning: no Firebase credentials configured, push notifications disabled")
		return nil
	}
	if _, err := os.Stat(credFile); err != nil {
		log.Printf("Warning: Firebase credentials file not readable: %v", err)
		return nil
	}

	log.Printf("Using Firebase credentials file: %s", credFile)

	app, err := firebase.NewApp(ctx, config, option.WithCredentialsFile(credFile))
	if err != nil {
		log.Printf("Warning: error initializing firebase app: %v", err)
		return nil
	}
	return app
}
