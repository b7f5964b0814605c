package postgres

import (
	"context"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
	"gorm.io/gorm"
)

// commitHook queues work to run once the surrounding transaction commits.
// It is nil outside WithTransaction.
type commitHook func(fn func())

// invalidate runs fn now and, inside a transaction, again after the commit so
// a read racing the transaction cannot leave the old row cached
func (h commitHook) invalidate(fn func()) {
	fn()
	if h != nil {
		h(fn)
	}
}

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// CountSubmissions counts submissions for a form
func (h *SharedHelpers) CountSubmissions(ctx context.Context, db *gorm.DB, formID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// ApplyFormFilters applies common filters to form queries
func (h *SharedHelpers) ApplyFormFilters(query *gorm.DB, filters repositories.FormFilters) *gorm.DB {
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}
	return query
}

// ApplySubmissionFilters applies common filters to submission queries
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.IsGuest != nil {
		query = query.Where("is_guest = ?", *filters.IsGuest)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	// id breaks ties between rows created in the same instant
	query = query.Order(sortBy + " " + sortOrder).Order("id " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
