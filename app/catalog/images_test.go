package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/app/logging"
	"github.com/mytheresa/phone-catalog/models"
)

type failingImageRepo struct {
	err error
}

func (r failingImageRepo) UpdatePhoneImage(context.Context, uint, *string) error { return r.err }
func (r failingImageRepo) DeletePhone(context.Context, uint) error               { return r.err }

func TestImagesPutDropsNewFileWhenRecordUpdateFails(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()
	store, err := assets.NewFilesystem(t.TempDir(), nil, logger)
	require.NoError(t, err)

	images := NewImages(failingImageRepo{err: errors.New("db down")}, store, logger)
	phone := &models.Phone{ID: 1}

	err = images.Put(ctx, phone, strings.NewReader("x"), "a.jpg", "http://localhost")
	assert.EqualError(t, err, "db down")
	assert.Nil(t, phone.Image)
	assert.Empty(t, storedFiles(t, store))
}

func TestImagesRemoveReportsMissingPhone(t *testing.T) {
	ctx := context.Background()
	logger := logging.Discard()
	store, err := assets.NewFilesystem(t.TempDir(), nil, logger)
	require.NoError(t, err)

	images := NewImages(failingImageRepo{err: models.ErrPhoneNotFound}, store, logger)

	err = images.Remove(ctx, &models.Phone{ID: 5})
	assert.ErrorIs(t, err, models.ErrPhoneNotFound)
}

func TestImagesPutIgnoresForeignOldReference(t *testing.T) {
	ctx := context.Background()
	repo := &MockPhoneRepo{Phones: catalogPhones()}
	logger := logging.Discard()
	store, err := assets.NewFilesystem(t.TempDir(), nil, logger)
	require.NoError(t, err)

	foreign := "http://localhost/etc/passwd"
	repo.Phones[0].Image = &foreign
	phone, err := repo.GetPhone(ctx, 1)
	require.NoError(t, err)

	err = NewImages(repo, store, logger).Put(ctx, phone, strings.NewReader("x"), "a.jpg", "http://localhost")
	require.NoError(t, err)
	assert.NotEqual(t, foreign, *repo.Phones[0].Image)
	assert.Len(t, storedFiles(t, store), 1)
}

// failingStore is an assets.Store whose operations fail with the configured errors.
type failingStore struct {
	storeErr  error
	deleteErr error

	deleted []string
}

func (s *failingStore) Store(_ context.Context, _ io.Reader, originalName, baseURL string) (string, error) {
	if s.storeErr != nil {
		return "", s.storeErr
	}
	return assets.PublicURL(baseURL, assets.NewName(originalName)), nil
}

func (s *failingStore) Delete(_ context.Context, reference string) error {
	s.deleted = append(s.deleted, reference)
	return s.deleteErr
}

func (s *failingStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, assets.ErrNotFound
}

func TestImageStoreFailures(t *testing.T) {
	const oldImage = "http://example.com/Images/MemoryPhones/old.jpg"

	testCases := []struct {
		name               string
		store              *failingStore
		request            func(t *testing.T) *http.Request
		expectedStatusCode int
		expectedDeleted    []string
		checkRepo          func(t *testing.T, repo *MockPhoneRepo)
	}{
		{
			name:  "Store failure on replace keeps the record",
			store: &failingStore{storeErr: fmt.Errorf("%w: disk full", assets.ErrStorage)},
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/phones/update_image/1", "file", "new.jpg", "x")
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedDeleted:    []string{oldImage},
			checkRepo: func(t *testing.T, repo *MockPhoneRepo) {
				require.NotNil(t, repo.Phones[0].Image)
				assert.Equal(t, oldImage, *repo.Phones[0].Image)
			},
		},
		{
			name:  "Store failure on attach keeps the record",
			store: &failingStore{storeErr: fmt.Errorf("%w: disk full", assets.ErrStorage)},
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/phones/2", "file", "new.jpg", "x")
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkRepo: func(t *testing.T, repo *MockPhoneRepo) {
				assert.Nil(t, repo.Phones[1].Image)
			},
		},
		{
			name:  "Old file cleanup failure does not block the replace",
			store: &failingStore{deleteErr: errors.New("permission denied")},
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/phones/update_image/1", "file", "new.jpg", "x")
			},
			expectedStatusCode: http.StatusNoContent,
			expectedDeleted:    []string{oldImage},
			checkRepo: func(t *testing.T, repo *MockPhoneRepo) {
				require.NotNil(t, repo.Phones[0].Image)
				assert.NotEqual(t, oldImage, *repo.Phones[0].Image)
			},
		},
		{
			name:  "File cleanup failure does not block the delete",
			store: &failingStore{deleteErr: errors.New("permission denied")},
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodDelete, "/phones/1", nil)
			},
			expectedStatusCode: http.StatusNoContent,
			expectedDeleted:    []string{oldImage},
			checkRepo: func(t *testing.T, repo *MockPhoneRepo) {
				assert.Len(t, repo.Phones, 7)
				_, err := repo.GetPhone(context.Background(), 1)
				assert.ErrorIs(t, err, models.ErrPhoneNotFound)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			phones := catalogPhones()
			image := oldImage
			phones[0].Image = &image
			repo := &MockPhoneRepo{Phones: phones}
			handler := newHandlerWithStore(repo, tc.store)

			rec := serve(handler, tc.request(t))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectedDeleted, tc.store.deleted)
			tc.checkRepo(t, repo)
		})
	}
}
