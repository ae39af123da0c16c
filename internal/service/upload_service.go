package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"

	"paintsnap/internal/config"
	"paintsnap/internal/ids"
	"paintsnap/internal/media/sniffer"
	"paintsnap/internal/storage"
)

const maxPhotoBytes = 20 << 20

var ErrPhotoTooLarge = errors.New("photo exceeds size limit")

type UploadInput struct {
	UserID string
	File   multipart.File
	Header *multipart.FileHeader
}

type UploadResult struct {
	ObjectKey string
	URL       string
	Format    string
	SizeBytes int64
}

// UploadService stores source photos in the object store and hands back
// the public URL that submissions reference.
type UploadService struct {
	store *storage.ObjectStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewUploadService(store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{store: store, cfg: cfg, log: log}
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil || input.Header == nil {
		return UploadResult{}, errors.New("invalid file payload")
	}
	if input.Header.Size > maxPhotoBytes {
		return UploadResult{}, ErrPhotoTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxPhotoBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, errors.New("empty file")
	}
	if len(data) > maxPhotoBytes {
		return UploadResult{}, ErrPhotoTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return UploadResult{}, fmt.Errorf("detect type: %w", err)
	}

	declared := sniffer.MimeTypeFromHTTP(http.Header(input.Header.Header))
	if declared != "" && declared != result.MIME {
		return UploadResult{}, fmt.Errorf("content type mismatch: declared %s, actual %s", declared, result.MIME)
	}

	objectKey := buildObjectKey(input.UserID, string(result.Type))
	size, err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store photo: %w", err)
	}

	url := s.store.PublicURL(objectKey)
	s.log.Debug().Str("user_id", input.UserID).Str("object_key", objectKey).Int64("size", size).Msg("photo stored")

	return UploadResult{
		ObjectKey: objectKey,
		URL:       url,
		Format:    string(result.Type),
		SizeBytes: size,
	}, nil
}

func buildObjectKey(userID string, ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, userID, fmt.Sprintf("%s.%s", ids.New(), ext))
}
