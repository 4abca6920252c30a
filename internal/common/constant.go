package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on control API calls.
const AccessTokenHeaderName = "access_token"

// DefaultChunkSize is the copy buffer size for every transfer loop.
const DefaultChunkSize = 32 * 1024
