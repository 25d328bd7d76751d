package common

const (
	// AuthorizationHeaderName is the HTTP header / gRPC metadata key carrying
	// the access token.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix prefixes the access token in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// TokenTypeBearer is the token_type label returned with every TokenPair.
	TokenTypeBearer = "bearer"
)
