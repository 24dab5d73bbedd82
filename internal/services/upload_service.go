package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"dukan/internal/apperror"

	"github.com/google/uuid"
)

// Presigner hands out time-limited upload URLs for an object store.
type Presigner interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	ObjectURL(key string) string
}

// PresignedUpload tells the client where to PUT a file and where it will
// be readable afterwards.
type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadService issues presigned image uploads. presigner may be nil when
// object storage is disabled.
type UploadService struct {
	presigner Presigner
	ttl       time.Duration
}

func NewUploadService(presigner Presigner, ttl time.Duration) *UploadService {
	return &UploadService{presigner: presigner, ttl: ttl}
}

// PresignImage reserves a fresh key under folder for one image upload by userID.
func (s *UploadService) PresignImage(ctx context.Context, userID, folder, contentType string) (*PresignedUpload, error) {
	if s.presigner == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "Image uploads are not configured")
	}
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, apperror.BadRequest("Only JPEG, PNG, WEBP or GIF images can be uploaded")
	}
	switch folder {
	case "avatars", "products", "events", "shops", "messages":
	default:
		return nil, apperror.BadRequest("Invalid upload folder")
	}

	key := path.Join(folder, userID, uuid.NewString()+ext)
	uploadURL, err := s.presigner.PresignPut(ctx, key, s.ttl)
	if err != nil {
		return nil, apperror.Internal("Failed to prepare upload", fmt.Errorf("presign %s: %w", key, err))
	}
	return &PresignedUpload{
		UploadURL: uploadURL,
		PublicURL: s.presigner.ObjectURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}
