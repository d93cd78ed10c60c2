package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "
