package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ImportRunSortFields contains allowed sort fields for import runs
var ImportRunSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"completed_at":  true,
	"source_file":   true,
	"status":        true,
	"total_rows":    true,
	"created_count": true,
	"failed_count":  true,
}

// orderClause builds a whitelisted ORDER BY clause. The id tiebreaker keeps
// pages stable when the sort column has equal values.
func orderClause(sortField, sortOrder string, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(sortField, allowed, defaultField)
	dir := ValidateSortOrder(sortOrder)
	return field + " " + dir + ", id " + dir
}
