package hub

import (
	"errors"
	"fmt"
)

// DeliveryError is a cast the hub rejected or never received
type DeliveryError struct {
	// StatusCode is zero when the request never got a response
	StatusCode int
	Code       string
	Message    string
}

func (e *DeliveryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Temporary reports whether retrying could help
func (e *DeliveryError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500 || e.StatusCode == 429
}

// IsDeliveryError unwraps err into a *DeliveryError
func IsDeliveryError(err error) (*DeliveryError, bool) {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
