package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// ListReportsResponse lists the available report names
type ListReportsResponse struct {
	Reports []string `json:"reports"`
}

// GetReportResponse represents a rendered report
type GetReportResponse struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}
