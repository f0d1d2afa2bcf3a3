package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListParams are the standard listing controls parsed from a request.
type ListParams struct {
	Filters map[string]string `json:"filters"`
	Sort    SortParams        `json:"sort"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Search  string            `json:"search"`
}

// SortParams is a single sort criterion.
type SortParams struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Pagination is the metadata returned next to a page of results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Scope whitelists the columns a listing endpoint exposes. Only mapped
// fields ever reach the generated SQL.
type Scope struct {
	// FilterColumns maps request filter names to database columns.
	FilterColumns map[string]string
	// SearchColumns are matched case-insensitively against the search term.
	SearchColumns []string
	// SortColumns maps request sort fields to database columns.
	SortColumns map[string]string
	// DefaultSort is used when the requested sort field is not mapped.
	DefaultSort string
}

// ParseListParams extracts listing controls from the query string. Filters
// arrive as filters[field]=value, sorting as sort[field] and sort[order].
func ParseListParams(c *gin.Context) ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if strings.HasPrefix(key, "filters[") && strings.HasSuffix(key, "]") {
			fieldName := key[8 : len(key)-1]
			if len(values) > 0 && values[0] != "" {
				filters[fieldName] = values[0]
			}
		}
	}

	sortOrder := c.Query("sort[order]")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return ListParams{
		Filters: filters,
		Sort: SortParams{
			Field: c.Query("sort[field]"),
			Order: sortOrder,
		},
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	}
}

// Apply narrows a query by the scope's whitelisted filters, search and
// sort. Pagination is separate so callers can count first.
func (s Scope) Apply(query *gorm.DB, params ListParams) *gorm.DB {
	for field, value := range params.Filters {
		if column, ok := s.FilterColumns[field]; ok && value != "" {
			query = query.Where(fmt.Sprintf("%s = ?", column), value)
		}
	}

	if params.Search != "" && len(s.SearchColumns) > 0 {
		conditions := make([]string, len(s.SearchColumns))
		args := make([]interface{}, len(s.SearchColumns))
		for i, column := range s.SearchColumns {
			conditions[i] = fmt.Sprintf("LOWER(%s) LIKE ?", column)
			args[i] = "%" + strings.ToLower(params.Search) + "%"
		}
		query = query.Where(strings.Join(conditions, " OR "), args...)
	}

	if column, ok := s.SortColumns[params.Sort.Field]; ok {
		query = query.Order(fmt.Sprintf("%s %s", column, strings.ToUpper(params.Sort.Order)))
	} else if s.DefaultSort != "" {
		query = query.Order(s.DefaultSort)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Paginate applies offset pagination to a query.
func Paginate(query *gorm.DB, page, limit int) *gorm.DB {
	return query.Offset((page - 1) * limit).Limit(limit)
}

// NewPagination builds the pagination metadata for a result page.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := (total + int64(limit) - 1) / int64(limit)

	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < int(totalPages),
		HasPrev:    page > 1,
	}
}
