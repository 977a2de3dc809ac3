package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"changemakers"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"45"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Blob storage, "s3" or "supabase"
	BlobBackend     string `envconfig:"BLOB_BACKEND" default:"s3"`
	S3BucketName    string `envconfig:"S3_BUCKET_NAME"`
	S3PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`

	// Supabase Storage
	SupabaseProjectID string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseAPIKey    string `envconfig:"SUPABASE_API_KEY"`
	SupabaseBucket    string `envconfig:"SUPABASE_BUCKET" default:"initiative-images"`

	// Geocoding is optional; leave GEOCODER_URL empty to skip address auto-fill
	GeocoderURL       string `envconfig:"GEOCODER_URL"`
	GeocoderUserAgent string `envconfig:"GEOCODER_USER_AGENT" default:"changemakers/1.0"`

	PublishTimeoutSec uint `envconfig:"PUBLISH_TIMEOUT_SEC" default:"30"`

	// Per client IP, applies to sign-in, registration and application intake
	RateLimitPerMinute int64  `envconfig:"RATE_LIMIT_PER_MINUTE" default:"20"`
	PublicListLimit    uint64 `envconfig:"PUBLIC_LIST_LIMIT" default:"50"`

	// Auth Configuration
	SessionMaxAgeSec int `envconfig:"SESSION_MAX_AGE_SEC" default:"3600"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
