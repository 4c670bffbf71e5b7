package constants

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Envelope is the single success shape every endpoint returns.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// ErrorEnvelope is the single error shape. Message is always an array of
// human-readable strings; Error is a short label.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Error      string   `json:"error"`
}

// Pagination is carried out-of-band in the Pagination response header, never
// inside the data payload.
type Pagination struct {
	Count       int64 `json:"count"`
	PageCount   int   `json:"pageCount"`
	PerPage     int   `json:"perPage"`
	CurrentPage int   `json:"currentPage"`
}

// PaginationParams holds the parsed page window.
type PaginationParams struct {
	Page  int
	Limit int
}

// ParsePaginationParams parses and clamps page/limit query parameters.
func ParsePaginationParams(c *gin.Context) PaginationParams {
	pageStr := c.DefaultQuery(QueryParamPage, DefaultPage)
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{Page: page, Limit: limit}
}

// Respond writes the success envelope, attaching any extra headers first.
func Respond(c *gin.Context, statusCode int, message string, data interface{}, headers map[string]string) {
	for key, value := range headers {
		c.Header(key, value)
	}
	c.JSON(statusCode, Envelope{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// RespondPaginated writes the success envelope with the pagination metadata
// serialized into the Pagination header.
func RespondPaginated(c *gin.Context, statusCode int, message string, data interface{}, pagination Pagination) {
	if meta, err := json.Marshal(pagination); err == nil {
		c.Header(HeaderPagination, string(meta))
	}
	c.JSON(statusCode, Envelope{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	})
}

// RespondError writes the error envelope.
func RespondError(c *gin.Context, statusCode int, label string, messages []string) {
	c.JSON(statusCode, ErrorEnvelope{
		StatusCode: statusCode,
		Message:    messages,
		Error:      label,
	})
}
