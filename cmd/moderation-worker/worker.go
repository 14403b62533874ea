package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/bengalmatrimony/backend/internal/services"
)

const (
	pendingPrefix    = "pending/"
	typeProfilePhoto = "profile_photo"
	eventTimeout     = 60 * time.Second
)

// gcsFinalizeEvent is the part of a storage object finalize notification
// the worker needs.
type gcsFinalizeEvent struct {
	Bucket   string            `json:"bucket"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
}

// cloudEventEnvelope covers structured content mode, where the object is
// nested under "data".
type cloudEventEnvelope struct {
	Data gcsFinalizeEvent `json:"data"`
}

type worker struct {
	biodatas  services.BiodataStore
	moderator func(bucket string) services.ImageModerator
	metadata  func(ctx context.Context, bucket, name string) (map[string]string, error)
}

// handleFinalize answers 5xx only for failures worth a redelivery.
// Everything else is acknowledged so Eventarc stops retrying.
func (wk *worker) handleFinalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	ev, err := parseFinalizeEvent(raw)
	if err != nil {
		log.Printf("[worker] decode failed ce-type=%s error=%v", r.Header.Get("Ce-Type"), err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if ev.Bucket == "" || !strings.HasPrefix(ev.Name, pendingPrefix) {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventTimeout)
	defer cancel()

	if ev.Metadata["email"] == "" && ev.Metadata["type"] == "" {
		md, err := wk.metadata(ctx, ev.Bucket, ev.Name)
		if errors.Is(err, storage.ErrObjectNotExist) {
			// Already promoted or removed by the server.
			log.Printf("[worker] object gone name=%s", ev.Name)
			w.WriteHeader(http.StatusOK)
			return
		}
		if err != nil {
			log.Printf("[worker] metadata fetch failed name=%s error=%v", ev.Name, err)
		} else {
			ev.Metadata = md
		}
	}
	if typ := ev.Metadata["type"]; typ != "" && typ != typeProfilePhoto {
		log.Printf("[worker] skipping type=%s name=%s", typ, ev.Name)
		w.WriteHeader(http.StatusOK)
		return
	}
	email := services.NormalizeEmail(ev.Metadata["email"])

	approved, err := wk.moderator(ev.Bucket).ModerateAndPromote(ctx, ev.Name, email)
	switch {
	case errors.Is(err, services.ErrImageRejected):
		n, err := wk.biodatas.ReplaceProfileImage(ctx, ev.Name, "")
		if err != nil {
			log.Printf("[worker] clear reference failed name=%s error=%v", ev.Name, err)
			http.Error(w, "update failed", http.StatusInternalServerError)
			return
		}
		log.Printf("[worker] rejected name=%s email=%s cleared=%d", ev.Name, email, n)
	case err != nil:
		log.Printf("[worker] moderation failed name=%s error=%v", ev.Name, err)
		http.Error(w, "moderation failed", http.StatusInternalServerError)
		return
	default:
		n, err := wk.biodatas.ReplaceProfileImage(ctx, ev.Name, approved)
		if err != nil {
			log.Printf("[worker] approve reference failed name=%s error=%v", ev.Name, err)
			http.Error(w, "update failed", http.StatusInternalServerError)
			return
		}
		log.Printf("[worker] approved name=%s email=%s updated=%d", ev.Name, email, n)
	}
	w.WriteHeader(http.StatusOK)
}

// parseFinalizeEvent accepts both binary and structured CloudEvent bodies.
func parseFinalizeEvent(raw []byte) (*gcsFinalizeEvent, error) {
	var ev gcsFinalizeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	if ev.Bucket == "" || ev.Name == "" {
		var env cloudEventEnvelope
		if err := json.Unmarshal(raw, &env); err == nil && env.Data.Bucket != "" && env.Data.Name != "" {
			ev = env.Data
		}
	}
	if ev.Metadata == nil {
		ev.Metadata = map[string]string{}
	}
	return &ev, nil
}
