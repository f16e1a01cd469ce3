package helpers

import (
	"math"
	"strconv"

	"github.com/KNyathi/thesis-review-system-sub002/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // Pages are 1-based
)

// ParsePaginationParams extracts and validates page/size query parameters.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// NewPaginationInfo creates the paging metadata for a list response.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	currentPage := page
	if totalPages > 0 && currentPage > totalPages {
		currentPage = totalPages
	}

	return dto.PaginationInfo{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// CalculateSliceIndices converts a 1-based page into slice bounds over an
// already-loaded result set.
func CalculateSliceIndices(page, size, totalItems int) (start, end int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	start = (page - 1) * size
	end = start + size

	if start >= totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
