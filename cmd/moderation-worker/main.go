package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/bengalmatrimony/backend/internal/services"
)

// moderation-worker receives Eventarc notifications for objects finalized in
// the profile image bucket and moderates pending/ uploads the server did not
// moderate inline.
func main() {
	_ = godotenv.Load()

	addr := getEnv("PORT", "8080")
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("[worker] MONGO_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := services.ConnectMongo(ctx, mongoURI, getEnv("MONGO_DB", "bengalMatrimony"))
	if err != nil {
		log.Fatalf("[worker] mongo connect failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	users := services.NewMongoUserService(ctx, db)
	biodatas, err := services.NewMongoBiodataService(ctx, db)
	if err != nil {
		log.Fatalf("[worker] biodata store init failed: %v", err)
	}

	gcs, err := storage.NewClient(context.Background())
	if err != nil {
		log.Fatalf("[worker] storage client failed: %v", err)
	}
	defer gcs.Close()

	detector, err := services.NewVisionDetector(context.Background())
	if err != nil {
		log.Fatalf("[worker] vision client failed: %v", err)
	}

	wk := &worker{
		biodatas: biodatas,
		moderator: func(bucket string) services.ImageModerator {
			return services.NewModerationService(detector, services.NewGCSObjects(gcs, bucket), bucket, users)
		},
		metadata: func(ctx context.Context, bucket, name string) (map[string]string, error) {
			attrs, err := gcs.Bucket(bucket).Object(name).Attrs(ctx)
			if err != nil {
				return nil, err
			}
			return attrs.Metadata, nil
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/events", wk.handleFinalize)

	log.Printf("[worker] listening on :%s", addr)
	log.Fatal(http.ListenAndServe(":"+addr, mux))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
