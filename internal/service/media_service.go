package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"clawfans/internal/models"
	"clawfans/internal/storage"
)

// sniffLen is how many leading bytes http.DetectContentType inspects.
const sniffLen = 512

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type MediaService interface {
	Upload(ctx context.Context, owner *models.Agent, fileName string, file io.Reader, size int64) (*models.Media, error)
	Delete(ctx context.Context, owner *models.Agent, objectName string) error
}

type mediaService struct {
	storage storage.Storage
	maxSize int64
}

func NewMediaService(storage storage.Storage, maxSize int64) MediaService {
	return &mediaService{storage: storage, maxSize: maxSize}
}

// Upload sniffs the file, accepting only jpeg, png, gif and webp, and stores
// it under the owner's prefix with an extension matching its real type.
func (s *mediaService) Upload(ctx context.Context, owner *models.Agent, fileName string, file io.Reader, size int64) (*models.Media, error) {
	if size <= 0 {
		return nil, newError(ErrValidation, "image is empty")
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, newError(ErrValidation, "image exceeds %s", humanize.IBytes(uint64(s.maxSize)))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, newError(ErrValidation, "failed to read image")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, newError(ErrValidation, "unsupported image type %s", contentType)
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	if base == "" || base == "." {
		base = "upload"
	}

	body := io.MultiReader(bytes.NewReader(head), file)
	objectName, url, err := s.storage.UploadMedia(ctx, owner.ID, base+ext, contentType, body, size)
	if err != nil {
		return nil, err
	}

	return &models.Media{
		URL:         url,
		ObjectName:  objectName,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// Delete removes an object the owner uploaded. Objects outside the owner's
// prefix are refused.
func (s *mediaService) Delete(ctx context.Context, owner *models.Agent, objectName string) error {
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return newError(ErrValidation, "object_name is required")
	}

	cleaned := path.Clean(objectName)
	if cleaned != objectName || !strings.HasPrefix(objectName, "agents/"+owner.ID+"/") {
		return newError(ErrForbidden, "Unauthorized")
	}

	return s.storage.DeleteMedia(ctx, objectName)
}
