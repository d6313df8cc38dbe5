// Package errors provides structured error handling for seqdex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (SQLite, filesystem)
//   - 3XX: Index errors (inconsistency, rebuild)
//   - 4XX: Validation and lookup errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates persistence-layer errors.
	CategoryStorage Category = "STORAGE"
	// CategoryIndex indicates derived-index errors.
	CategoryIndex Category = "INDEX"
	// CategoryValidation indicates input validation and lookup errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStorageFailure = "ERR_201_STORAGE_FAILURE"
	ErrCodeStorageCorrupt = "ERR_202_STORAGE_CORRUPT"
	ErrCodeLockHeld       = "ERR_203_LOCK_HELD"

	// Index errors (300-399)
	ErrCodeIndexInconsistent = "ERR_301_INDEX_INCONSISTENT"
	ErrCodeRebuildFailed     = "ERR_302_REBUILD_FAILED"

	// Validation and lookup errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeEmptySymbols = "ERR_402_EMPTY_SYMBOLS"
	ErrCodeEmptyPattern = "ERR_403_EMPTY_PATTERN"
	ErrCodeUnknownMode  = "ERR_404_UNKNOWN_MODE"
	ErrCodeNotFound     = "ERR_410_SEQUENCE_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeImportFailed = "ERR_503_IMPORT_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "201" from "ERR_201_STORAGE_FAILURE")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryIndex
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStorageCorrupt, ErrCodeRebuildFailed:
		return SeverityFatal
	case ErrCodeIndexInconsistent:
		// Recovered internally via rebuild-and-retry; callers rarely see it.
		return SeverityWarning
	}
	return SeverityError
}
