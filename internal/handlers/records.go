package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerengine/internal/errors"
	"ledgerengine/internal/pagination"
	"ledgerengine/internal/services"
)

// RecordListQuery holds the filters shared by the income and expense lists.
type RecordListQuery struct {
	pagination.PageRequest
	From       string `form:"from"`
	To         string `form:"to"`
	Month      string `form:"month" binding:"omitempty,iso_month"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// bindRecordQuery parses the list query into a page request and a filter.
// month is a calendar month in loc and cannot be combined with from/to.
func bindRecordQuery(c *gin.Context, loc *time.Location) (pagination.PageRequest, services.RecordFilter, error) {
	var q RecordListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return pagination.PageRequest{}, services.RecordFilter{}, invalidInput(err)
	}

	var filter services.RecordFilter
	if q.CategoryID != "" {
		filter.CategoryID = &q.CategoryID
	}

	if q.Month != "" {
		if q.From != "" || q.To != "" {
			return q.PageRequest, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "month cannot be combined with from or to")
		}
		from, to, err := monthBounds(q.Month, loc)
		if err != nil {
			return q.PageRequest, filter, err
		}
		filter.FromDate, filter.ToDate = &from, &to
		return q.PageRequest, filter, nil
	}

	from, err := parseOptionalDate("from", &q.From)
	if err != nil {
		return q.PageRequest, filter, err
	}
	to, err := parseOptionalDate("to", &q.To)
	if err != nil {
		return q.PageRequest, filter, err
	}
	if to != nil && len(q.To) == len("2006-01-02") {
		// a plain date covers the whole day
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return q.PageRequest, filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}
	filter.FromDate, filter.ToDate = from, to
	return q.PageRequest, filter, nil
}
