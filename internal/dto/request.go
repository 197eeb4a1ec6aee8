package dto

// GetReportRequest represents a named report request
type GetReportRequest struct {
	Name string `uri:"name" binding:"required"`
}
