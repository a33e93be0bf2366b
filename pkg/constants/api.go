package constants

// HTTP and API constants
const (
	// Content types
	ContentTypeJSON = "application/json"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	// Auth
	BearerPrefix = "Bearer "

	// DefaultAPIVersion is the REST API version used when the org
	// does not pin one explicitly.
	DefaultAPIVersion = "59.0"
)

// Platform limits
const (
	// BatchSize is the maximum number of records per bulk create,
	// update, or upsert request.
	BatchSize = 200

	// ChunkSize bounds the number of literal values in a single
	// IN (...) clause so the composed SOQL stays under the platform's
	// query-length limit.
	ChunkSize = 200

	// AllRecords is the RecordCount sentinel meaning "no LIMIT clause".
	AllRecords = -1

	// DefaultRecordCount is used when the operator gives no --count.
	DefaultRecordCount = 10
)

// Environment variable names
const (
	EnvOrgPrefix     = "SFSEED_"
	EnvInstanceURL   = "_INSTANCE_URL"
	EnvAccessToken   = "_ACCESS_TOKEN"
	EnvAPIVersion    = "_API_VERSION"
	EnvJWTClientID   = "_JWT_CLIENT_ID"
	EnvJWTUsername   = "_JWT_USERNAME"
	EnvJWTKeyFile    = "_JWT_KEY_FILE"
	EnvJWTAudience   = "_JWT_AUDIENCE"
	EnvWebClientID   = "_WEB_CLIENT_ID"
	EnvLoginURL      = "_LOGIN_URL"
	EnvDebugLogPath  = "SFSEED_DEBUG_LOG"
	EnvTokenCache    = "SFSEED_TOKEN_CACHE"
	EnvTokenCacheKey = "SFSEED_TOKEN_CACHE_KEY"

	// DefaultLoginURL is used for token exchanges when the alias does
	// not override it.
	DefaultLoginURL = "https://login.salesforce.com"

	// DefaultCallbackAddr is where the web flow's one-shot callback
	// server listens.
	DefaultCallbackAddr = "localhost:8787"
)
