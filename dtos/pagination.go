// Package dtos holds the request/response shapes shared across handlers.
package dtos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxPageSize caps every list endpoint.
const MaxPageSize = 100

// ParamError is a query-parameter validation failure with the stable code
// returned to the client.
type ParamError struct {
	Code    string
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// PageQuery is the parsed pagination/sort portion of a list request.
type PageQuery struct {
	Page     int
	PageSize int
	Sort     string
	Order    string
}

// Offset converts the page number into a row offset.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Desc reports whether the sort direction is descending.
func (q PageQuery) Desc() bool {
	return q.Order == "desc"
}

// OrderClause renders the validated sort as an ORDER BY expression over
// the given column. The column always comes from the endpoint's
// allow-list mapping, never from raw user input.
func (q PageQuery) OrderClause(column string) string {
	if q.Desc() {
		return column + " DESC"
	}
	return column + " ASC"
}

// ParsePageQuery applies one discipline to every list endpoint: numeric
// parameters are lax (unparsable page/pageSize fall back to defaults,
// page is floored at 1, pageSize clamped to [1,100]) while enumerated
// parameters are strict (a sort field outside the endpoint's allow-list
// or an order other than asc/desc is a 400, never a silent fallback).
func ParsePageQuery(c *gin.Context, sortFields []string, defaultSort string, defaultPageSize int) (PageQuery, *ParamError) {
	q := PageQuery{Page: 1, PageSize: defaultPageSize, Sort: defaultSort, Order: "desc"}

	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Page = n
		}
	}

	if raw := c.Query("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.PageSize = n
		}
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	if raw := c.Query("sort"); raw != "" {
		valid := false
		for _, f := range sortFields {
			if raw == f {
				valid = true
				break
			}
		}
		if !valid {
			return q, &ParamError{
				Code:    "INVALID_SORT_FIELD",
				Message: fmt.Sprintf("Invalid sort field. Must be one of: %s", strings.Join(sortFields, ", ")),
			}
		}
		q.Sort = raw
	}

	if raw := c.Query("order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return q, &ParamError{Code: "INVALID_ORDER", Message: "Order must be 'asc' or 'desc'"}
		}
		q.Order = raw
	}

	return q, nil
}

// Paged is the unified list response envelope.
type Paged struct {
	Data     interface{} `json:"data"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Total    int64       `json:"total"`
}

// NewPaged wraps a result slice in the envelope.
func NewPaged(data interface{}, q PageQuery, total int64) Paged {
	return Paged{Data: data, Page: q.Page, PageSize: q.PageSize, Total: total}
}
