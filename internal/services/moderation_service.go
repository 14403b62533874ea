package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ErrImageRejected is returned when SafeSearch flags an image as unsafe.
var ErrImageRejected = errors.New("image rejected: violates community guidelines")

const pendingPrefix = "pending/"

// ImageModerator turns a pending upload path into an approved URL.
type ImageModerator interface {
	ModerateAndPromote(ctx context.Context, path, email string) (string, error)
}

// ObjectStore is the slice of bucket operations moderation needs.
type ObjectStore interface {
	Promote(ctx context.Context, from, to, token string) error
	Delete(ctx context.Context, name string) error
}

// ModerationService runs SafeSearch on profile images in Firebase Storage
// and promotes safe ones from pending/ to their final path inline.
type ModerationService struct {
	detector SafeSearchDetector
	objects  ObjectStore
	bucket   string
	strikes  UserStore
}

func NewModerationService(detector SafeSearchDetector, objects ObjectStore, bucket string, strikes UserStore) *ModerationService {
	return &ModerationService{
		detector: detector,
		objects:  objects,
		bucket:   bucket,
		strikes:  strikes,
	}
}

// ModerateAndPromote runs SafeSearch on a pending/ path. If safe, promotes
// it and returns the download URL. If unsafe, deletes the pending object,
// records a strike on the uploader, and returns ErrImageRejected. Paths
// outside pending/ are returned unchanged.
func (m *ModerationService) ModerateAndPromote(ctx context.Context, path, email string) (string, error) {
	if !strings.HasPrefix(path, pendingPrefix) {
		return path, nil
	}

	gcsURI := fmt.Sprintf("gs://%s/%s", m.bucket, path)
	ss, err := m.detector.DetectSafeSearch(ctx, gcsURI)
	if err != nil {
		log.Printf("[Moderation] SafeSearch error path=%s error=%v", path, err)
		return "", fmt.Errorf("moderation: safesearch: %w", err)
	}

	log.Printf("[Moderation] path=%s adult=%s violence=%s racy=%s unsafe=%v",
		path, ss.Adult, ss.Violence, ss.Racy, ss.IsUnsafe())

	if ss.IsUnsafe() {
		if err := m.objects.Delete(ctx, path); err != nil {
			log.Printf("[Moderation] delete failed path=%s error=%v", path, err)
		}
		if m.strikes != nil && email != "" {
			if err := m.strikes.AddStrike(ctx, email); err != nil {
				log.Printf("[Moderation] strike failed email=%s error=%v", email, err)
			}
		}
		return "", ErrImageRejected
	}

	finalName := strings.TrimPrefix(path, pendingPrefix)
	token := uuid.NewString()
	if err := m.objects.Promote(ctx, path, finalName, token); err != nil {
		return "", fmt.Errorf("moderation: promote: %w", err)
	}
	return firebaseDownloadURL(m.bucket, finalName, token), nil
}

// GCSObjects implements ObjectStore on a Cloud Storage bucket.
type GCSObjects struct {
	bucket *storage.BucketHandle
}

func NewGCSObjects(client *storage.Client, bucket string) *GCSObjects {
	return &GCSObjects{bucket: client.Bucket(bucket)}
}

func (g *GCSObjects) Promote(ctx context.Context, from, to, token string) error {
	src := g.bucket.Object(from)
	dst := g.bucket.Object(to)

	// Firebase Storage may need a moment to finalize uploads before the object is accessible.
	var attrs *storage.ObjectAttrs
	var err error
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		attrs, err = src.Attrs(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrObjectNotExist) && attempt < maxRetries-1 {
			backoff := time.Duration(attempt+1) * 500 * time.Millisecond
			log.Printf("[Moderation] object not found yet, retrying in %v (attempt %d/%d): %s", backoff, attempt+1, maxRetries, from)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		return fmt.Errorf("source attrs: %w", err)
	}

	md := map[string]string{}
	for k, v := range attrs.Metadata {
		md[k] = v
	}
	md["moderation"] = "approved"
	md["firebaseStorageDownloadTokens"] = token

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if _, err := dst.Update(ctx, storage.ObjectAttrsToUpdate{Metadata: md}); err != nil {
		return fmt.Errorf("update metadata: %w", err)
	}
	return src.Delete(ctx)
}

func (g *GCSObjects) Delete(ctx context.Context, name string) error {
	return g.bucket.Object(name).Delete(ctx)
}

func firebaseDownloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket,
		url.PathEscape(objectName),
		url.QueryEscape(token),
	)
}
