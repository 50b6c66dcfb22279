package listing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/phone-catalog/models"
)

type mockFinder struct {
	phones []models.Phone
	err    error

	offsets []int
	limits  []int
	filters []models.PhoneFilters
}

func (m *mockFinder) matching(filters models.PhoneFilters) []models.Phone {
	var out []models.Phone
	for _, p := range m.phones {
		if filters.CategoryName != "" && (p.Category == nil || p.Category.NormalizedName != filters.CategoryName) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *mockFinder) CountPhones(_ context.Context, filters models.PhoneFilters) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.matching(filters))), nil
}

func (m *mockFinder) FindPhones(_ context.Context, filters models.PhoneFilters, offset, limit int) ([]models.Phone, error) {
	m.offsets = append(m.offsets, offset)
	m.limits = append(m.limits, limit)
	m.filters = append(m.filters, filters)

	phones := m.matching(filters)
	start := min(max(offset, 0), len(phones))
	end := min(start+limit, len(phones))
	return phones[start:end], nil
}

type countingFinder struct {
	mockFinder
	counts int
}

func (m *countingFinder) CountPhones(ctx context.Context, filters models.PhoneFilters) (int64, error) {
	m.counts++
	return m.mockFinder.CountPhones(ctx, filters)
}

func catalog() []models.Phone {
	android := &models.Category{ID: 1, Name: "Android", NormalizedName: "android"}
	ios := &models.Category{ID: 2, Name: "iOS", NormalizedName: "ios"}

	var phones []models.Phone
	for i := uint(1); i <= 8; i++ {
		category := android
		if i > 4 {
			category = ios
		}
		phones = append(phones, models.Phone{ID: i, CategoryID: &category.ID, Category: category})
	}
	return phones
}

func ids(phones []models.Phone) []uint {
	out := make([]uint, len(phones))
	for i, p := range phones {
		out[i] = p.ID
	}
	return out
}

var testConfig = Config{DefaultPageSize: 3, MaxPageSize: 100}

func TestList(t *testing.T) {
	testCases := []struct {
		name                string
		query               Query
		expectedIDs         []uint
		expectedCurrentPage int
		expectedTotalPages  int
		expectedOffset      int
		expectedLimit       int
	}{
		{
			name:                "First page of everything",
			query:               Query{PageNo: 1, PageSize: 3},
			expectedIDs:         []uint{1, 2, 3},
			expectedCurrentPage: 1,
			expectedTotalPages:  3,
			expectedOffset:      0,
			expectedLimit:       3,
		},
		{
			name:                "Page past the end of android",
			query:               Query{Category: "android", PageNo: 3, PageSize: 3},
			expectedIDs:         []uint{4},
			expectedCurrentPage: 2,
			expectedTotalPages:  2,
			expectedOffset:      3,
			expectedLimit:       3,
		},
		{
			name:                "Exact fit",
			query:               Query{Category: "ios", PageNo: 1, PageSize: 4},
			expectedIDs:         []uint{5, 6, 7, 8},
			expectedCurrentPage: 1,
			expectedTotalPages:  1,
			expectedOffset:      0,
			expectedLimit:       4,
		},
		{
			name:                "Unknown category",
			query:               Query{Category: "windows", PageNo: 2, PageSize: 3},
			expectedIDs:         []uint{},
			expectedCurrentPage: 2,
			expectedTotalPages:  0,
			expectedOffset:      3,
			expectedLimit:       3,
		},
		{
			name:                "Page number below one is kept",
			query:               Query{PageNo: 0, PageSize: 3},
			expectedIDs:         []uint{1, 2, 3},
			expectedCurrentPage: 0,
			expectedTotalPages:  3,
			expectedOffset:      0,
			expectedLimit:       3,
		},
		{
			name:                "Smallest page number does not wrap the offset",
			query:               Query{Category: "ios", PageNo: math.MinInt, PageSize: 3},
			expectedIDs:         []uint{5, 6, 7},
			expectedCurrentPage: math.MinInt,
			expectedTotalPages:  2,
			expectedOffset:      0,
			expectedLimit:       3,
		},
		{
			name:                "Page size is capped",
			query:               Query{PageNo: 1, PageSize: 1000},
			expectedIDs:         []uint{1, 2, 3, 4, 5, 6, 7, 8},
			expectedCurrentPage: 1,
			expectedTotalPages:  1,
			expectedOffset:      0,
			expectedLimit:       100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			finder := &mockFinder{phones: catalog()}
			svc := NewService(finder, testConfig)

			page, err := svc.List(context.Background(), tc.query)
			require.NoError(t, err)

			assert.NotNil(t, page.Items)
			assert.Equal(t, tc.expectedIDs, ids(page.Items))
			assert.Equal(t, tc.expectedCurrentPage, page.CurrentPage)
			assert.Equal(t, tc.expectedTotalPages, page.TotalPages)

			require.Len(t, finder.offsets, 1)
			assert.Equal(t, tc.expectedOffset, finder.offsets[0])
			assert.Equal(t, tc.expectedLimit, finder.limits[0])
			assert.Equal(t, tc.query.Category, finder.filters[0].CategoryName)
		})
	}
}

func TestListEmptyCategoryMatchesEverything(t *testing.T) {
	svc := NewService(&mockFinder{phones: catalog()}, testConfig)

	page, err := svc.List(context.Background(), Query{Category: "", PageNo: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 8)
}

func TestListRejectsInvalidPageSize(t *testing.T) {
	for _, size := range []int{0, -1, -50} {
		finder := &mockFinder{phones: catalog()}
		svc := NewService(finder, testConfig)

		_, err := svc.List(context.Background(), Query{PageNo: 1, PageSize: size})
		assert.ErrorIs(t, err, ErrInvalidPageSize)
		assert.Empty(t, finder.offsets, "no query may run for page size %d", size)
	}
}

func TestListPropagatesRepositoryErrors(t *testing.T) {
	svc := NewService(&mockFinder{err: errors.New("db down")}, testConfig)

	_, err := svc.List(context.Background(), Query{PageNo: 1, PageSize: 3})
	assert.EqualError(t, err, "db down")
}

func TestTotalPagesAndClampPage(t *testing.T) {
	for total := int64(0); total <= 30; total++ {
		for size := 1; size <= 7; size++ {
			pages := TotalPages(total, size)

			// pages is the smallest count that holds every item.
			assert.GreaterOrEqual(t, int64(pages*size), total)
			if pages > 0 {
				assert.Less(t, int64((pages-1)*size), total)
			} else {
				assert.Zero(t, total)
			}

			for pageNo := 1; pageNo <= pages+3; pageNo++ {
				clamped := ClampPage(pageNo, pages)
				if pages == 0 {
					assert.Equal(t, pageNo, clamped)
					continue
				}
				assert.GreaterOrEqual(t, clamped, 1)
				assert.LessOrEqual(t, clamped, pages)
				if pageNo <= pages {
					assert.Equal(t, pageNo, clamped)
				}
			}
		}
	}
}

func TestOffset(t *testing.T) {
	testCases := []struct {
		pageNo, pageSize int
		expected         int
	}{
		{pageNo: 1, pageSize: 3, expected: 0},
		{pageNo: 2, pageSize: 3, expected: 3},
		{pageNo: 5, pageSize: 10, expected: 40},
		{pageNo: 0, pageSize: 3, expected: 0},
		{pageNo: -7, pageSize: 3, expected: 0},
		{pageNo: math.MinInt, pageSize: 100, expected: 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Offset(tc.pageNo, tc.pageSize), "page %d of size %d", tc.pageNo, tc.pageSize)
	}
}

func TestListCountsOnce(t *testing.T) {
	finder := &countingFinder{mockFinder: mockFinder{phones: catalog()}}
	svc := NewService(finder, testConfig)

	_, err := svc.List(context.Background(), Query{Category: "android", PageNo: 1, PageSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, finder.counts)
	assert.Len(t, finder.offsets, 1)
}

func TestNewResponse(t *testing.T) {
	t.Run("Page with items", func(t *testing.T) {
		resp := NewResponse(Page[int]{Items: []int{1, 2}, CurrentPage: 1, TotalPages: 1})
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
		assert.Equal(t, []int{1, 2}, resp.Data.Items)
	})

	t.Run("Empty page", func(t *testing.T) {
		resp := NewResponse(Page[int]{CurrentPage: 1})
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, EmptyResultMessage, *resp.Error)
		assert.NotNil(t, resp.Data.Items)
		assert.Empty(t, resp.Data.Items)
	})
}

func TestMapPage(t *testing.T) {
	page := MapPage(Page[int]{Items: []int{1, 2, 3}, CurrentPage: 2, TotalPages: 4}, func(n int) string {
		return string(rune('a' + n - 1))
	})

	assert.Equal(t, []string{"a", "b", "c"}, page.Items)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 4, page.TotalPages)
}

func TestConfigFinalize(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		var cfg Config
		require.NoError(t, cfg.Finalize())
		assert.Equal(t, 3, cfg.DefaultPageSize)
		assert.Equal(t, 100, cfg.MaxPageSize)
	})

	t.Run("Environment override", func(t *testing.T) {
		t.Setenv(EnvPaginationDefaultPageSize, "10")
		var cfg Config
		require.NoError(t, cfg.Finalize())
		assert.Equal(t, 10, cfg.DefaultPageSize)
	})

	t.Run("Default above maximum", func(t *testing.T) {
		cfg := Config{DefaultPageSize: 50, MaxPageSize: 10}
		assert.Error(t, cfg.Finalize())
	})
}
