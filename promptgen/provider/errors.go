package provider

import "fmt"

// ServiceError reports a non-success or unusable response from the
// generation service. Body carries whatever error text the service returned.
type ServiceError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("generation service error: %s | %s", e.Status, e.Body)
	}
	return fmt.Sprintf("generation service error: %s", e.Status)
}

// UnavailableError reports a transport-level failure reaching the generation
// service (connection refused, timeout, DNS).
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("generation service unreachable at %s: %v (is it running?)", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
