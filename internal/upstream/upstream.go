// Package upstream holds types shared by the provider HTTP clients.
//
// Both the Nutritionix and WGER clients report a non-2xx response as a
// [*StatusError] carrying the numeric status code and the raw response body,
// so tool handlers can render the provider's own error text back to the
// caller. Network-level failures (timeout, DNS, refused connection) are
// returned as ordinary wrapped errors from the HTTP transport instead.
package upstream

import "fmt"

// StatusError is returned when a provider responds with a non-2xx status.
type StatusError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the raw response body, unparsed.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
