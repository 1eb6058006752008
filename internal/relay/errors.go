package relay

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/secrets"
	"github.com/mandalnilabja/goatrelay/internal/types"
	"github.com/mandalnilabja/goatrelay/internal/upstream"
)

// ErrorKind names the failure classes a relay call can end in.
type ErrorKind string

const (
	KindMethodNotAllowed ErrorKind = "method_not_allowed"
	KindMissingConfig    ErrorKind = "missing_configuration"
	KindBadRequest       ErrorKind = "malformed_request"
	KindUpstreamStatus   ErrorKind = "upstream_status"
	KindUpstreamTimeout  ErrorKind = "upstream_timeout"
	KindTransport        ErrorKind = "transport_failure"
	KindInvalidUpstream  ErrorKind = "invalid_upstream_response"
	KindInternal         ErrorKind = "internal"
)

// Mapped is the HTTP rendering of an error.
type Mapped struct {
	Kind   ErrorKind
	Status int
	Body   *types.APIError
}

// MapError turns any relay failure into exactly one status and body.
// timeout is the bound that was applied to the upstream call.
func MapError(err error, timeout time.Duration) Mapped {
	var (
		reqErr     *RequestError
		missingErr *secrets.MissingError
		upErr      *upstream.Error
	)

	switch {
	case errors.As(err, &reqErr):
		body := types.ErrInvalidRequest(reqErr.Message)
		if reqErr.Param != "" {
			body = types.NewAPIErrorWithParam(reqErr.Message, types.ErrorTypeInvalidRequest, reqErr.Param)
		}
		return Mapped{Kind: KindBadRequest, Status: reqErr.Status, Body: body}

	case errors.As(err, &missingErr):
		return Mapped{Kind: KindMissingConfig, Status: http.StatusInternalServerError, Body: types.ErrServer(missingErr.Error())}

	case errors.As(err, &upErr):
		switch upErr.Kind {
		case upstream.KindTimeout:
			msg := fmt.Sprintf("upstream request timed out after %s", timeout)
			return Mapped{Kind: KindUpstreamTimeout, Status: http.StatusGatewayTimeout, Body: types.ErrTimeout(msg)}
		case upstream.KindStatus:
			msg := fmt.Sprintf("upstream returned %d %s", upErr.Status, http.StatusText(upErr.Status))
			return Mapped{Kind: KindUpstreamStatus, Status: upErr.Status, Body: types.ErrUpstream(msg).WithDetails(upErr.Body)}
		default:
			return Mapped{Kind: KindTransport, Status: http.StatusBadGateway, Body: types.ErrUpstream(upErr.Err.Error())}
		}

	case errors.Is(err, ErrInvalidUpstreamJSON):
		return Mapped{Kind: KindInvalidUpstream, Status: http.StatusBadGateway, Body: types.ErrUpstream(err.Error())}

	default:
		return Mapped{Kind: KindInternal, Status: http.StatusInternalServerError, Body: types.ErrServer(err.Error())}
	}
}

// WriteError maps err and writes it. It returns the mapping for logging.
func WriteError(w http.ResponseWriter, err error, timeout time.Duration) Mapped {
	m := MapError(err, timeout)
	types.WriteError(w, m.Status, m.Body)
	return m
}
