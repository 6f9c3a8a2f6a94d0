// Package common contains shared constants and sentinel errors used across
// Task Planner components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerSchema is the expected prefix of the Authorization header value.
const BearerSchema = "Bearer"
