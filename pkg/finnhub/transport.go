package finnhub

import (
	"net/http"
	"time"

	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
)

// NewHTTPClient makes an http client suitable for finnhub, with the
// given round tripper middlewares applied in order.
func NewHTTPClient(timeout time.Duration, mws ...middleware.RoundTripperHandler) *http.Client {
	mws = append([]middleware.RoundTripperHandler{
		middleware.Header("Accept", "application/json"),
	}, mws...)

	return requester.New(http.Client{Timeout: timeout}, mws...).Client()
}
