package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "changemakers_access_token"
)
