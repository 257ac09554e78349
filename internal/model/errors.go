package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrCycleRejected    = errors.New("category cannot be moved under itself or its descendant")
	ErrOutOfRange       = errors.New("number is outside the sibling range")
	ErrCategoryNotEmpty = errors.New("category still has subcategories or dishes")
)
