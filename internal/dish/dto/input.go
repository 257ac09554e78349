package dto

type CreateDishInput struct {
	CategoryID  string
	Name        string
	Description string
	Price       float64
	Quantity    int
	ShowUSD     bool
	ImageURL    *string
}

type UpdateDishInput struct {
	ID          string
	CategoryID  string // A different category moves the dish to the end of its list
	Name        string
	Description string
	Price       float64
	Quantity    int
	ShowUSD     bool
	ImageURL    *string // Nil keeps the current image
	DeleteImage bool    // Clears the image and releases the stored file
}
