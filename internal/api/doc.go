// Package api is the HTTP client for the storefront backend.
//
// Endpoints are relative to a base URL such as http://localhost:8001/api.
// Non-2xx responses become *Error carrying the status and the backend's
// "detail" message. Errors for 404 responses match ErrNotFound with
// errors.Is; undecodable bodies match ErrDecode.
package api
