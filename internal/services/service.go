package services

import (
	"context"
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/gateway"
)

// Doer executes a backend request; *gateway.Client implements it
type Doer interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// normalize turns a gateway failure into the error shown to staff. The HTTP
// status is refined into a domain kind and the backend's own message wins
// over the generic status text. Structured conflict fields pass through.
func normalize(err error, fallback string) error {
	if err == nil {
		return nil
	}

	e, ok := apperr.As(err)
	if !ok {
		return apperr.Wrap(apperr.KindServer, fallback, err)
	}

	out := *e
	if out.Kind == apperr.KindHTTPStatus {
		switch {
		case out.StatusCode == http.StatusConflict:
			out.Kind = apperr.KindDomainConflict
		case out.StatusCode >= http.StatusInternalServerError:
			out.Kind = apperr.KindServer
		default:
			out.Kind = apperr.KindValidation
		}
	}

	switch {
	case out.ServerMessage != "":
		out.Message = out.ServerMessage
	case out.Message == "":
		out.Message = fallback
	}
	return &out
}
