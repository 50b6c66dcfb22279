package models

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedCatalog []byte

type seedDocument struct {
	Categories []struct {
		Name           string `yaml:"name"`
		NormalizedName string `yaml:"normalizedName"`
		Phones         []struct {
			Name        string  `yaml:"name"`
			Model       string  `yaml:"model"`
			Description *string `yaml:"description"`
			Price       string  `yaml:"price"`
			Image       string  `yaml:"image"`
		} `yaml:"phones"`
	} `yaml:"categories"`
}

// Seeder populates an empty catalog with the demo phones.
type Seeder struct {
	db       *gorm.DB
	imageURL func(name string) string
}

// NewSeeder creates a Seeder. imageURL turns a seed image file name into the
// reference stored on the phone; a nil imageURL leaves seeded phones without images.
func NewSeeder(db *gorm.DB, imageURL func(name string) string) *Seeder {
	return &Seeder{
		db:       db,
		imageURL: imageURL,
	}
}

// Seed inserts the demo catalog when both the categories and phones tables are empty.
// It reports whether anything was inserted. Running it again is a no-op.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	categories, err := s.catalog()
	if err != nil {
		return false, err
	}

	seeded := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var categoryCount, phoneCount int64
		if err := tx.Model(&Category{}).Count(&categoryCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&Phone{}).Count(&phoneCount).Error; err != nil {
			return err
		}
		if categoryCount > 0 || phoneCount > 0 {
			return nil
		}

		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("insert seed catalog: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return seeded, nil
}

func (s *Seeder) catalog() ([]Category, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(seedCatalog, &doc); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	categories := make([]Category, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		category := Category{
			Name:           c.Name,
			NormalizedName: c.NormalizedName,
		}

		for _, p := range c.Phones {
			price, err := decimal.NewFromString(p.Price)
			if err != nil {
				return nil, fmt.Errorf("seed phone %s %s: invalid price: %w", p.Name, p.Model, err)
			}

			phone := Phone{
				Name:        p.Name,
				Model:       p.Model,
				Description: p.Description,
				Price:       price,
			}
			if s.imageURL != nil && p.Image != "" {
				image := s.imageURL(p.Image)
				phone.Image = &image
			}
			category.Phones = append(category.Phones, phone)
		}

		categories = append(categories, category)
	}

	return categories, nil
}
