package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

// GetAllCategories returns every category with its phones, ordered by id.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).
		Preload("Phones", func(db *gorm.DB) *gorm.DB {
			return db.Order("phones.phone_id")
		}).
		Order("category_id").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).
		Preload("Phones", func(db *gorm.DB) *gorm.DB {
			return db.Order("phones.phone_id")
		}).
		First(&category, "category_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category. Normalized names are not required to be unique.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Omit("Phones").Create(category).Error
}

// UpdateCategory rewrites the name and normalized name of the category identified by category.ID.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, category *Category) error {
	res := r.db.WithContext(ctx).
		Model(&Category{}).
		Where("category_id = ?", category.ID).
		Updates(map[string]any{
			"name":            category.Name,
			"normalized_name": category.NormalizedName,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category. Its phones stay in the catalog, uncategorized.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Phone{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&Category{}, "category_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}
