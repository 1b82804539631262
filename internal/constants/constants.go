package constants

const (
	// ContextKeyUserID is used both as the session key and the gin context key.
	ContextKeyUserID = "user_id"

	// ContextKeyCapabilities holds the acting user's capability set.
	ContextKeyCapabilities = "capabilities"

	// ContextKeyInteraction holds the interaction loaded by RequireInteractionOwner.
	ContextKeyInteraction = "interaction"

	// ContextKeyRequestID holds the per-request id.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "crm_session"

	// PageSize is the fixed page size of every listing.
	PageSize = 10

	// ExtraFormRows is the number of blank rows offered per dependent collection.
	ExtraFormRows = 3

	MinPasswordLength = 8

	MaxSuggestedKeywords = 10

	// PhoneCountryPrefix is prepended to stored phone numbers for display.
	PhoneCountryPrefix = "+38"
)
