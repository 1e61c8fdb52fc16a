// Package catalog holds the product request types and their handlers.
package catalog

type GetAllProducts struct{}

type GetProductByID struct {
	ID string
}

type GetFilteredSortedProducts struct {
	Filters  string
	Sorts    string
	Page     int
	PageSize int
}

// CreateProduct is rejected unless UserID, the authenticated caller, equals
// CreatorID.
type CreateProduct struct {
	UserID      string
	Name        string
	Description string
	Price       float64
	IsAvailable bool
	CreatorID   string
}

type UpdateProduct struct {
	UserID      string
	ID          string
	Name        string
	Description string
	Price       float64
	IsAvailable bool
}

type DeleteProduct struct {
	UserID string
	ID     string
}

type DeleteUserProducts struct {
	UserID string
}
