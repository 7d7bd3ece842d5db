package api

import (
	"errors"
	"net/http"

	"github.com/faanross/stegocrypt/internal/carrier"
	"github.com/faanross/stegocrypt/internal/lsb"
	"github.com/faanross/stegocrypt/internal/payload"
	"github.com/faanross/stegocrypt/internal/scrypto"
)

const unexpectedError = "an unexpected error occurred"

var errBusy = errors.New("server is busy, try again later")

// Classify maps a pipeline error to an HTTP status and a client-safe
// message. Internal failures never leak their detail.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBusy):
		return http.StatusServiceUnavailable, errBusy.Error()
	case errors.Is(err, lsb.ErrCapacity), errors.Is(err, carrier.ErrCarrierFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, scrypto.ErrIntegrity):
		return http.StatusUnauthorized, scrypto.ErrIntegrity.Error()
	case errors.Is(err, payload.ErrFraming):
		return http.StatusUnauthorized, payload.ErrFraming.Error()
	default:
		return http.StatusInternalServerError, unexpectedError
	}
}
