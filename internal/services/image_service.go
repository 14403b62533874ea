package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/storage"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidImage  = errors.New("invalid image file")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService stores uploaded profile images on local disk. The owner
// index is kept in dataDir/images.json, outside the served directory, so
// deletes survive a restart.
type ImageService struct {
	mu        sync.RWMutex
	uploadDir string
	index     *storage.JSONFile[map[string]*imageRecord]
	images    map[string]*imageRecord // imageID -> image info
}

type imageRecord struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	OwnerEmail string `json:"ownerEmail"`
}

func NewImageService(uploadDir, dataDir string) (*ImageService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, err
	}
	index, err := storage.NewJSONFile[map[string]*imageRecord](dataDir, "images.json")
	if err != nil {
		return nil, err
	}
	images, err := index.Load()
	if err != nil {
		return nil, fmt.Errorf("load image index: %w", err)
	}
	if images == nil {
		images = make(map[string]*imageRecord)
	}

	return &ImageService{
		uploadDir: uploadDir,
		index:     index,
		images:    images,
	}, nil
}

// Upload sniffs the content type from the first bytes, so a client-sent
// Content-Type is not trusted.
func (s *ImageService) Upload(email string, file io.Reader) (*models.ImageUploadResponse, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrInvalidImage
	}
	head = head[:n]

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return nil, ErrInvalidImage
	}

	imageID := uuid.New().String()
	filename := imageID + ext
	path := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := dst.Write(head); err == nil {
		_, err = io.Copy(dst, file)
	}
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	s.mu.Lock()
	s.images[imageID] = &imageRecord{ID: imageID, Filename: filename, OwnerEmail: NormalizeEmail(email)}
	err = s.index.Save(s.images)
	s.mu.Unlock()
	if err != nil {
		log.Printf("[Image] index save failed id=%s error=%v", imageID, err)
	}

	return &models.ImageUploadResponse{
		ID:       imageID,
		URL:      "/uploads/" + filename,
		Filename: filename,
	}, nil
}

func (s *ImageService) Delete(email, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.images[imageID]
	if !exists {
		return ErrImageNotFound
	}
	if record.OwnerEmail != NormalizeEmail(email) {
		return ErrUnauthorized
	}

	if err := os.Remove(filepath.Join(s.uploadDir, record.Filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	delete(s.images, imageID)
	return s.index.Save(s.images)
}
