package errors

// Error codes are logged with every error response (field "error_code") so
// failures can be grouped without parsing messages.
// Format: CATEGORY_SPECIFIC_DETAIL
const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationRequired     = "VALIDATION_REQUIRED"      // required attribute missing
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // attribute has the wrong JSON type
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // path id is not a positive integer

	// ==================== Businesses (BUSINESS_) ====================
	BusinessNotFound = "BUSINESS_NOT_FOUND"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"

	// ==================== Traffic (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== Server (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	StoreUnavailable    = "STORE_UNAVAILABLE"
)

// Messages returned to clients. Clients match on these strings.
const (
	MsgMissingAttributes = "The request body is missing at least one of the required attributes"
	MsgBusinessNotFound  = "No business with this business_id exists"
	MsgReviewNotFound    = "No review with this review_id exists"
	MsgDuplicateReview   = "You have already submitted a review for this business. You can update your previous review, or delete it and submit a new review"
	MsgInternal          = "An internal error occurred"
	MsgRateLimited       = "Too many requests"
)
