package models

// Category represents a group of phones.
// NormalizedName is the lowercase key used to filter listings.
type Category struct {
	ID             uint    `gorm:"column:category_id;primaryKey"`
	Name           string  `gorm:"not null"`
	NormalizedName string  `gorm:"column:normalized_name;index;not null"`
	Phones         []Phone `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (c *Category) TableName() string {
	return "categories"
}
