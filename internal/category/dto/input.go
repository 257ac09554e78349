package dto

type CreateCategoryInput struct {
	ParentID *string // Nil or empty means root
	Name     string
	ImageURL *string
}

type UpdateCategoryInput struct {
	ID       string
	ParentID *string // Nil or empty moves the category to the root
	Name     string
	ImageURL *string // Nil keeps the current image
}
