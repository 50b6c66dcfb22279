package models

import "errors"

var (
	// ErrPhoneNotFound is returned when a phone is not found.
	ErrPhoneNotFound = errors.New("phone not found")

	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrUnknownCategory is returned when a phone references a category that does not exist.
	ErrUnknownCategory = errors.New("referenced category does not exist")

	// ErrNegativePrice is returned when a phone price is below zero.
	ErrNegativePrice = errors.New("price must not be negative")
)
