package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/pageza/alchemorsel-import/backend/internal/models"
	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

const (
	imagePrefix       = "recipe-images"
	unassignedRecipe  = "unassigned"
	maxFileNameLength = 100
)

var (
	ownerPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// ImageService handles image upload and read-through operations
type ImageService struct {
	store    ObjectStore
	ledger   IUploadLedger
	maxBytes int64
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewImageService creates a new ImageService instance. ledger may be nil.
func NewImageService(store ObjectStore, ledger IUploadLedger, maxBytes int64, log logrus.FieldLogger) *ImageService {
	return &ImageService{
		store:    store,
		ledger:   ledger,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log.WithField("component", "images"),
	}
}

// Upload decodes a base64 image, writes it to storage and returns where it lives
func (s *ImageService) Upload(ctx context.Context, req *types.UploadImageRequest) (*types.UploadImageResponse, error) {
	if !ownerPattern.MatchString(req.UserID) {
		return nil, ErrInvalidOwner
	}
	recipeID := req.RecipeID
	if recipeID == "" {
		recipeID = unassignedRecipe
	} else if !ownerPattern.MatchString(recipeID) {
		return nil, ErrInvalidOwner
	}

	data, err := decodeImageData(req.ImageData)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	uploadPath := path.Join(imagePrefix, req.UserID, recipeID,
		fmt.Sprintf("%d_%s", s.now().UnixMilli(), sanitizeFileName(req.FileName)))

	if err := s.store.Put(ctx, uploadPath, data, contentType, req.UserID); err != nil {
		upstreamErrorsTotal.WithLabelValues("storage").Inc()
		return nil, err
	}
	uploadedBytesTotal.Add(float64(len(data)))

	downloadURL, err := s.store.URL(ctx, uploadPath)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("storage").Inc()
		return nil, err
	}

	if s.ledger != nil {
		upload := &models.Upload{
			UserID:      req.UserID,
			RecipeID:    req.RecipeID,
			StoragePath: uploadPath,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
		}
		if err := s.ledger.Record(ctx, upload); err != nil {
			s.log.WithError(err).WithField("path", uploadPath).Warn("upload stored but not recorded")
		}
	}

	s.log.WithFields(logrus.Fields{"path": uploadPath, "bytes": len(data)}).Info("image uploaded")
	return &types.UploadImageResponse{
		Success:     true,
		DownloadURL: downloadURL,
		UploadPath:  uploadPath,
	}, nil
}

// Open checks the object exists and opens it for streaming
func (s *ImageService) Open(ctx context.Context, storagePath string) (io.ReadCloser, ObjectInfo, error) {
	clean, err := CleanStoragePath(storagePath)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	exists, err := s.store.Exists(ctx, clean)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("storage").Inc()
		return nil, ObjectInfo{}, err
	}
	if !exists {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}

	body, info, err := s.store.Open(ctx, clean)
	if err != nil {
		upstreamErrorsTotal.WithLabelValues("storage").Inc()
		return nil, ObjectInfo{}, err
	}
	return body, info, nil
}

// CleanStoragePath rejects empty, absolute and parent-relative paths
func CleanStoragePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrUnsafePath
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." || segment == "." || segment == "" {
			return "", ErrUnsafePath
		}
	}
	return p, nil
}

// decodeImageData accepts raw base64 or a data: URL
func decodeImageData(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.IndexByte(encoded, ',')
		if comma < 0 {
			return nil, ErrInvalidImage
		}
		encoded = encoded[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some clients strip padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return data, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		name = "image"
	}
	if len(name) > maxFileNameLength {
		name = name[len(name)-maxFileNameLength:]
	}
	return name
}
