package catalog

type CreateProductRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	CategoryID  *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	PriceCents  int64    `json:"price_cents" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Tags        []string `json:"tags,omitempty" validate:"max=10,dive,max=40"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	CategoryID  *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	PriceCents  *int64   `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	Currency    *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=40"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type ListProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
}
