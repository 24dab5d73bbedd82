package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	err error
}

func (f fakePresigner) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://minio.local/dukan/" + key + "?X-Amz-Expires=" + expiry.String(), nil
}

func (f fakePresigner) ObjectURL(key string) string {
	return "https://minio.local/dukan/" + key
}

func TestPresignImage(t *testing.T) {
	svc := NewUploadService(fakePresigner{}, 15*time.Minute)

	upload, err := svc.PresignImage(context.Background(), "user-1", "avatars", "IMAGE/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Key, "avatars/user-1/"))
	assert.True(t, strings.HasSuffix(upload.Key, ".png"))
	assert.Equal(t, "https://minio.local/dukan/"+upload.Key, upload.PublicURL)
	assert.Contains(t, upload.UploadURL, upload.Key)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), upload.ExpiresAt, 5*time.Second)
}

func TestPresignImage_Rejections(t *testing.T) {
	ctx := context.Background()

	_, err := NewUploadService(nil, time.Minute).PresignImage(ctx, "user-1", "avatars", "image/png")
	requireCode(t, err, http.StatusServiceUnavailable)

	svc := NewUploadService(fakePresigner{}, time.Minute)
	_, err = svc.PresignImage(ctx, "user-1", "avatars", "application/pdf")
	requireCode(t, err, http.StatusBadRequest)
	_, err = svc.PresignImage(ctx, "user-1", "../secrets", "image/png")
	requireCode(t, err, http.StatusBadRequest)

	broken := NewUploadService(fakePresigner{err: errors.New("minio down")}, time.Minute)
	_, err = broken.PresignImage(ctx, "user-1", "products", "image/jpeg")
	requireCode(t, err, http.StatusInternalServerError)
}
