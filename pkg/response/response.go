package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Paginated wraps a page of results with the listing totals the frontend
// tables expect.
type Paginated struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Page   int         `json:"page"`
	Limit  int         `json:"limit"`
}

// Page returns a standard paginated success response
func Page(data interface{}, total int64, page, limit int) Paginated {
	return Paginated{
		Status: "success",
		Data:   data,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
}
