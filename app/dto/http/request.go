package http

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ConfirmEmailRequest struct {
	Email string `query:"email" validate:"required,email"`
	Token string `query:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `query:"email" validate:"required,email"`
}

// ResetPasswordRequest is bound from the JSON body on POST and echoed back
// from the query string on GET.
type ResetPasswordRequest struct {
	Email       string `json:"email" query:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
	ResetToken  string `json:"resetToken" query:"token" validate:"required"`
}

type RefreshTokenRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	ID   string `json:"id" validate:"required,uuid"`
	Name string `json:"name" validate:"required"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gt=0"`
	IsAvailable bool    `json:"isAvailable"`
	CreatorID   string  `json:"creatorId" validate:"required,uuid"`
}

type UpdateProductRequest struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gt=0"`
	IsAvailable bool    `json:"isAvailable"`
}

type FilterSortRequest struct {
	Filters  string `query:"filters"`
	Sorts    string `query:"sorts"`
	Page     int    `query:"page" validate:"gte=0"`
	PageSize int    `query:"pageSize" validate:"gte=0"`
}
