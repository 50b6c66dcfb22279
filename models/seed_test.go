package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederSeedsEmptyCatalogOnce(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seeder := NewSeeder(db, func(name string) string {
		return "https://localhost:7002/Images/MemoryPhones/" + name
	})

	seeded, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = seeder.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "Second run must be a no-op")

	var categories, phones int64
	require.NoError(t, db.Model(&Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&Phone{}).Count(&phones).Error)
	assert.Equal(t, int64(2), categories)
	assert.Equal(t, int64(8), phones)

	phone, err := NewPhonesRepository(db).GetPhone(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Samsung", phone.Name)
	assert.Equal(t, "S24 Black", phone.Model)
	require.NotNil(t, phone.Image)
	assert.Equal(t, "https://localhost:7002/Images/MemoryPhones/s24black.jpg", *phone.Image)
}

func TestSeederSkipsWhenAnyTableHasRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, NewCategoriesRepository(db).CreateCategory(ctx, &Category{Name: "Feature", NormalizedName: "feature"}))

	seeded, err := NewSeeder(db, nil).Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	var phones int64
	require.NoError(t, db.Model(&Phone{}).Count(&phones).Error)
	assert.Zero(t, phones)
}

func TestSeederWithoutImageURL(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	seeded, err := NewSeeder(db, nil).Seed(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	phone, err := NewPhonesRepository(db).GetPhone(ctx, 1)
	require.NoError(t, err)
	assert.False(t, phone.HasImage())
}
