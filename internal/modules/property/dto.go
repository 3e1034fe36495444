package property

type CreatePropertyRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	Address         string  `json:"address" validate:"required"`
	City            string  `json:"city" validate:"required"`
	MonthlyRent     float64 `json:"monthly_rent" validate:"required,gt=0"`
	SecurityDeposit float64 `json:"security_deposit" validate:"gte=0"`
	ProjectID       *int64  `json:"project_id"`
}

type UpdatePropertyRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Address         *string  `json:"address"`
	City            *string  `json:"city"`
	MonthlyRent     *float64 `json:"monthly_rent"`
	SecurityDeposit *float64 `json:"security_deposit"`
	IsAvailable     *bool    `json:"is_available"`
}

type ModerateRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}
