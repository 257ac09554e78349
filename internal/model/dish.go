package model

type Dish struct {
	BaseModel
	CategoryID  string    `db:"category_id" json:"category_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Quantity    int       `db:"quantity" json:"quantity"`
	ShowUSD     bool      `db:"show_usd" json:"show_usd"`
	IsHidden    bool      `db:"is_hidden" json:"is_hidden"`
	ImageURL    *string   `db:"image_url" json:"image_url"`
	Number      int       `db:"number" json:"number"`
	Category    *Category `db:"-" json:"category,omitempty"` // Joined data
}
