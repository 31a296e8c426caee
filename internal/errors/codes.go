package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to user-facing messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Coupon (COUPON_) ====================
	CouponNotFound     = "COUPON_NOT_FOUND"
	CouponInvalidScore = "COUPON_INVALID_SCORE"
	CouponInactive     = "COUPON_INACTIVE"

	// ==================== Brand / Category (CATALOG_) ====================
	BrandNotFound     = "CATALOG_BRAND_NOT_FOUND"
	CategoryNotFound  = "CATALOG_CATEGORY_NOT_FOUND"
	CategoryBadParent = "CATALOG_CATEGORY_BAD_PARENT"
	CatalogSlugExists = "CATALOG_SLUG_EXISTS"

	// ==================== Adjudication (ADJUDICATION_) ====================
	AdjudicationFailed      = "ADJUDICATION_FAILED"
	AdjudicationBadVerdict  = "ADJUDICATION_BAD_VERDICT"
	AdjudicationUnavailable = "ADJUDICATION_UNAVAILABLE"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
