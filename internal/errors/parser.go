package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: code plus user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a raw store/service error into a code and a message
// safe to show to users. Sensitive details are hidden; the message should
// still tell the caller what went wrong.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM not-found
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint violations

	// 2-1. Unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 2-2. Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower)
	}

	// 2-3. Not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Network / connection errors (external text-generation service included)
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") ||
		strings.Contains(errStrLower, "context deadline exceeded") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	// 4. Default internal error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An internal error occurred. Please try again later",
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "slug") {
		return ErrorInfo{
			Code:    CatalogSlugExists,
			Message: "This slug is already in use",
		}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email is already registered",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "brand_id") {
		return ErrorInfo{Code: BrandNotFound, Message: "Referenced brand does not exist"}
	}
	if strings.Contains(errLower, "category_id") || strings.Contains(errLower, "parent_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "Referenced category does not exist"}
	}
	if strings.Contains(errLower, "coupon_id") {
		return ErrorInfo{Code: CouponNotFound, Message: "Referenced coupon does not exist"}
	}
	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Referenced record does not exist",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "coupon") {
		return "Coupon not found"
	}
	if strings.Contains(contextLower, "brand") {
		return "Brand not found"
	}
	if strings.Contains(contextLower, "category") {
		return "Category not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}

	return "Requested record not found"
}
