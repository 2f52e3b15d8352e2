package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainUser "civicfix/internal/domain/user"
	"civicfix/internal/infrastructure/storage"
	"civicfix/internal/logger"
	appErrors "civicfix/pkg/errors"
)

// MaxImageBytes caps uploaded issue images.
const MaxImageBytes = 5 << 20

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service hands issue images to the object-storage collaborator and returns
// the stable URL the client then attaches to its issue report.
type Service struct {
	store storage.ObjectStorage
}

func NewService(store storage.ObjectStorage) *Service {
	return &Service{store: store}
}

type UploadResponse struct {
	URL string `json:"url"`
}

func (s *Service) UploadImage(ctx context.Context, actor domainUser.Principal, contentType string, body []byte) (*UploadResponse, error) {
	if actor.IsAnonymous() {
		return nil, appErrors.NewAppError(appErrors.CodeUnauthenticated,
			"authentication required", appErrors.ErrUnauthenticated)
	}

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"unsupported image type, expected JPEG, PNG or WebP", nil)
	}
	if len(body) == 0 || len(body) > MaxImageBytes {
		return nil, appErrors.NewAppError(appErrors.CodeValidation,
			"image must be between 1 byte and 5 MiB", nil)
	}

	key := imageKey(ext)
	url, err := s.store.Put(ctx, key, contentType, body)
	if err != nil {
		return nil, err
	}

	logger.Info("Issue image uploaded",
		zap.String("key", key),
		zap.String("uploader_id", actor.UserID.String()),
		zap.Int("size_bytes", len(body)),
		zap.String("event", "image_uploaded"),
	)

	return &UploadResponse{URL: url}, nil
}

func imageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("issues/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
