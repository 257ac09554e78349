package dto

type DishFilters struct {
	Query         string // Matched against name and description
	CategoryID    string
	IncludeHidden bool
	Page          int
	PageSize      int
}
