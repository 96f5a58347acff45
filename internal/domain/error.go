package domain

// ErrorResponse is the standardized structure for API error responses.
// @Description Standardized structure for API error responses.
type ErrorResponse struct {
	Code     int    `json:"code" example:"400"`
	Category string `json:"category" example:"VALIDATION_ERROR"`
	Message  string `json:"message" example:"Warehouse stock (50) exceeds capacity (40)"`
}
