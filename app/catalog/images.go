package catalog

import (
	"context"
	"io"
	"log/slog"

	"github.com/mytheresa/phone-catalog/app/assets"
	"github.com/mytheresa/phone-catalog/models"
)

type ImageRepository interface {
	UpdatePhoneImage(ctx context.Context, id uint, image *string) error
	DeletePhone(ctx context.Context, id uint) error
}

// Images couples the image of a phone to the phone record.
// Cleanup of old files is best effort: failures are logged and never stop the
// record from being updated or deleted.
type Images struct {
	repo   ImageRepository
	store  assets.Store
	logger *slog.Logger
}

func NewImages(repo ImageRepository, store assets.Store, logger *slog.Logger) *Images {
	return &Images{
		repo:   repo,
		store:  store,
		logger: logger.With("component", "images"),
	}
}

// Put attaches a new image to the phone, replacing the previous one.
// The previous file is removed before the new one is stored. If storing fails
// the record keeps its current reference. On success phone.Image holds the new
// reference.
func (i *Images) Put(ctx context.Context, phone *models.Phone, r io.Reader, originalName, baseURL string) error {
	if phone.HasImage() {
		i.discard(ctx, phone.ID, *phone.Image)
	}

	reference, err := i.store.Store(ctx, r, originalName, baseURL)
	if err != nil {
		return err
	}

	if err := i.repo.UpdatePhoneImage(ctx, phone.ID, &reference); err != nil {
		i.discard(ctx, phone.ID, reference)
		return err
	}

	phone.Image = &reference
	i.logger.Info("image attached", "phone_id", phone.ID, "image", reference)
	return nil
}

// Remove deletes the image file of the phone, then the phone record.
func (i *Images) Remove(ctx context.Context, phone *models.Phone) error {
	if phone.HasImage() {
		i.discard(ctx, phone.ID, *phone.Image)
	}
	return i.repo.DeletePhone(ctx, phone.ID)
}

func (i *Images) discard(ctx context.Context, phoneID uint, reference string) {
	if err := i.store.Delete(ctx, reference); err != nil {
		i.logger.Warn("image cleanup failed", "phone_id", phoneID, "image", reference, "error", err)
	}
}
