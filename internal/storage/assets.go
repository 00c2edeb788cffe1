// Package storage validates uploaded files and hands them to an object store.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "blogsphere/internal/errors"
)

const (
	// MaxFileSize is the largest accepted upload.
	MaxFileSize = 5 << 20
	// MaxFiles is the largest accepted batch.
	MaxFiles = 5

	// FolderPosts holds post cover images.
	FolderPosts = "blogs"
	// FolderFiles holds batch uploads.
	FolderFiles = "blogs/files"
)

var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// Uploader is the object store behind AssetStore.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// File is an upload before validation.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Asset is a stored file.
type Asset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// AssetStore validates files and writes them through an Uploader.
type AssetStore struct {
	uploader Uploader
	now      func() time.Time
}

// NewAssetStore creates an asset store.
func NewAssetStore(uploader Uploader) *AssetStore {
	return &AssetStore{uploader: uploader, now: time.Now}
}

// Store validates and uploads a single file into folder.
func (s *AssetStore) Store(ctx context.Context, f File, folder string) (*Asset, error) {
	contentType, err := validate(f)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := s.objectKey(folder, id, allowedTypes[contentType])
	url, err := s.uploader.Upload(ctx, key, f.Data, contentType)
	if err != nil {
		return nil, apperrors.Store("failed to upload file", err)
	}
	return &Asset{ID: key, URL: url, ContentType: contentType, Size: len(f.Data)}, nil
}

// StoreMany validates every file first, then uploads them concurrently.
// Any failure fails the whole batch.
func (s *AssetStore) StoreMany(ctx context.Context, files []File, folder string) ([]*Asset, error) {
	if len(files) == 0 {
		return nil, apperrors.Validation("no files uploaded")
	}
	if len(files) > MaxFiles {
		return nil, apperrors.Validation(fmt.Sprintf("at most %d files can be uploaded at once", MaxFiles))
	}
	for _, f := range files {
		if _, err := validate(f); err != nil {
			return nil, err
		}
	}

	assets := make([]*Asset, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			asset, err := s.Store(gctx, f, folder)
			if err != nil {
				return err
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}

// objectKey builds folder/YYYY/MM/DD/<id><ext>.
func (s *AssetStore) objectKey(folder, id, ext string) string {
	now := s.now().UTC()
	return path.Join(
		strings.Trim(folder, "/"),
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()),
		id+ext,
	)
}

// validate checks size, declared type and sniffed content, returning the canonical type.
func validate(f File) (string, error) {
	if len(f.Data) == 0 {
		return "", apperrors.Validation("file is empty")
	}
	if len(f.Data) > MaxFileSize {
		return "", apperrors.Validation("file exceeds the 5MB limit")
	}

	declared := canonicalType(f.ContentType)
	if declared != "" {
		if _, ok := allowedTypes[declared]; !ok {
			return "", apperrors.Validation("Invalid file type. Only JPEG, PNG and PDF are allowed.")
		}
	}

	detected := canonicalType(mimetype.Detect(f.Data).String())
	if _, ok := allowedTypes[detected]; !ok {
		return "", apperrors.Validation("Invalid file type. Only JPEG, PNG and PDF are allowed.")
	}
	if declared != "" && declared != detected {
		return "", apperrors.Validation("file content does not match its declared type")
	}
	return detected, nil
}

func canonicalType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "image/jpg" || contentType == "image/pjpeg" {
		return "image/jpeg"
	}
	if contentType == "application/octet-stream" {
		return ""
	}
	return contentType
}
