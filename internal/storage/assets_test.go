package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "blogsphere/internal/errors"
)

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.example/" + key, nil
}

var (
	pngData  = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	jpegData = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
	pdfData  = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")
)

func newTestStore(u Uploader) *AssetStore {
	s := NewAssetStore(u)
	s.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestAssetStore_Store(t *testing.T) {
	tests := []struct {
		name        string
		file        File
		expectedErr error
		expectedExt string
	}{
		{"png", File{Name: "a.png", ContentType: "image/png", Data: pngData}, nil, ".png"},
		{"jpeg with jpg alias", File{Name: "a.jpg", ContentType: "image/jpg", Data: jpegData}, nil, ".jpg"},
		{"pdf without declared type", File{Name: "a.pdf", Data: pdfData}, nil, ".pdf"},
		{"declared gif", File{Name: "a.gif", ContentType: "image/gif", Data: pngData}, apperrors.ErrValidation, ""},
		{"text content", File{Name: "a.png", ContentType: "image/png", Data: []byte("hello world")}, apperrors.ErrValidation, ""},
		{"mismatched type", File{Name: "a.png", ContentType: "application/pdf", Data: pngData}, apperrors.ErrValidation, ""},
		{"empty", File{Name: "a.png", ContentType: "image/png"}, apperrors.ErrValidation, ""},
		{"too large", File{Name: "a.png", ContentType: "image/png", Data: append(pngData, make([]byte, MaxFileSize)...)}, apperrors.ErrValidation, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			asset, err := newTestStore(up).Store(context.Background(), tt.file, FolderPosts)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, up.keys)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(asset.ID, "blogs/2024/03/07/"), asset.ID)
			assert.True(t, strings.HasSuffix(asset.ID, tt.expectedExt), asset.ID)
			assert.Equal(t, "https://cdn.example/"+asset.ID, asset.URL)
		})
	}
}

func TestAssetStore_StoreMany(t *testing.T) {
	up := &fakeUploader{}
	s := newTestStore(up)
	ctx := context.Background()

	assets, err := s.StoreMany(ctx, []File{
		{ContentType: "image/png", Data: pngData},
		{ContentType: "application/pdf", Data: pdfData},
	}, FolderFiles)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "application/pdf", assets[1].ContentType)
	assert.Len(t, up.keys, 2)

	six := make([]File, MaxFiles+1)
	for i := range six {
		six[i] = File{ContentType: "image/png", Data: pngData}
	}
	_, err = s.StoreMany(ctx, six, FolderFiles)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = s.StoreMany(ctx, nil, FolderFiles)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	up.keys = nil
	_, err = s.StoreMany(ctx, []File{{ContentType: "image/png", Data: pngData}, {ContentType: "text/plain", Data: []byte("x")}}, FolderFiles)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, up.keys)
}

func TestAssetStore_UploaderFailure(t *testing.T) {
	s := newTestStore(&fakeUploader{err: errors.New("bucket missing")})

	_, err := s.Store(context.Background(), File{ContentType: "image/png", Data: pngData}, FolderPosts)
	assert.ErrorIs(t, err, apperrors.ErrStore)
}
