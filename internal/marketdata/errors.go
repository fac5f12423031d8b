package marketdata

import (
	"errors"
	"fmt"
)

// ErrNoData indicates the API returned zero results for a requested
// range or year.
var ErrNoData = errors.New("no data available")

// FetchError reports a non-success response from the market data API.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Body)
}
