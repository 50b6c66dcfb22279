package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type PhonesRepository struct {
	db *gorm.DB
}

// PhoneFilters narrows a phone listing.
// An empty CategoryName matches every phone, categorized or not.
type PhoneFilters struct {
	CategoryName string
}

func NewPhonesRepository(db *gorm.DB) *PhonesRepository {
	return &PhonesRepository{
		db: db,
	}
}

func (r *PhonesRepository) filtered(ctx context.Context, filters PhoneFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&Phone{})

	if filters.CategoryName != "" {
		query = query.
			Joins("LEFT JOIN categories ON categories.category_id = phones.category_id").
			Where("categories.normalized_name = ?", filters.CategoryName)
	}

	return query.Session(&gorm.Session{})
}

// CountPhones returns how many phones match the filters.
func (r *PhonesRepository) CountPhones(ctx context.Context, filters PhoneFilters) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindPhones returns one slice of the phones matching the filters, ordered by id.
// Use CountPhones for the number of matches.
func (r *PhonesRepository) FindPhones(ctx context.Context, filters PhoneFilters, offset, limit int) ([]Phone, error) {
	var phones []Phone

	if err := r.filtered(ctx, filters).
		Preload("Category").
		Order("phones.phone_id").
		Offset(offset).
		Limit(limit).
		Find(&phones).Error; err != nil {
		return nil, err
	}

	return phones, nil
}

func (r *PhonesRepository) GetPhone(ctx context.Context, id uint) (*Phone, error) {
	var phone Phone
	if err := r.db.WithContext(ctx).
		Preload("Category").
		First(&phone, "phone_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhoneNotFound
		}
		return nil, err
	}
	return &phone, nil
}

func (r *PhonesRepository) CreatePhone(ctx context.Context, phone *Phone) error {
	if phone.Price.IsNegative() {
		return ErrNegativePrice
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, phone.CategoryID); err != nil {
			return err
		}
		return translate(tx.Omit("Category").Create(phone).Error)
	})
}

// UpdatePhone rewrites the mutable fields of the phone identified by phone.ID:
// name, model, description, price and category. The image is left untouched.
func (r *PhonesRepository) UpdatePhone(ctx context.Context, phone *Phone) error {
	if phone.Price.IsNegative() {
		return ErrNegativePrice
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, phone.CategoryID); err != nil {
			return err
		}

		res := tx.Model(&Phone{}).
			Where("phone_id = ?", phone.ID).
			Updates(map[string]any{
				"name":        phone.Name,
				"model":       phone.Model,
				"description": phone.Description,
				"price":       phone.Price,
				"category_id": phone.CategoryID,
			})
		if err := translate(res.Error); err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return ErrPhoneNotFound
		}
		return nil
	})
}

// UpdatePhoneImage sets the image reference of a phone. A nil image clears it.
func (r *PhonesRepository) UpdatePhoneImage(ctx context.Context, id uint, image *string) error {
	res := r.db.WithContext(ctx).
		Model(&Phone{}).
		Where("phone_id = ?", id).
		Update("image", image)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPhoneNotFound
	}
	return nil
}

func (r *PhonesRepository) DeletePhone(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Phone{}, "phone_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPhoneNotFound
	}
	return nil
}

func ensureCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}

	var count int64
	if err := tx.Model(&Category{}).Where("category_id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUnknownCategory
	}
	return nil
}

// translate maps driver-level constraint errors onto repository errors.
// It relies on gorm.Config.TranslateError being enabled.
func translate(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrUnknownCategory
	}
	return err
}
