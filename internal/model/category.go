package model

type Category struct {
	BaseModel
	ParentID   *string    `db:"parent_id" json:"parent_id"` // Nullable, nil for root categories
	Name       string     `db:"name" json:"name"`
	ImageURL   *string    `db:"image_url" json:"image_url"`
	Number     int        `db:"number" json:"number"`
	Children   []Category `db:"-" json:"children,omitempty"`    // For tree structure, not in DB
	NestedName string     `db:"-" json:"nested_name,omitempty"` // "Parent / Child", not in DB
}

// SameRef reports whether two optional references (parent ids, image URLs)
// are equal. Two nils are equal.
func SameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
