package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// maxPage is the largest page whose offset fits in an int. Any page beyond
// it is past the end of every listing anyway.
const maxPage = math.MaxInt / constants.PageSize

// NewPaginationParams builds parameters for a 1-based page of the fixed page size.
func NewPaginationParams(page int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	return PaginationParams{
		Page:   page,
		Limit:  constants.PageSize,
		Offset: (page - 1) * constants.PageSize,
	}
}

// GetPaginationParams reads the "page" query parameter. Missing or malformed
// values fall back to the first page.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	return NewPaginationParams(page)
}

// Response builds the pagination metadata for total rows.
func (p PaginationParams) Response(total int64) PaginationResponse {
	return PaginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
