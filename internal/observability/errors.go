package observability

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/baxromumarov/job-watcher/internal/httpx"
)

const (
	ErrorNetwork = "network"
	ErrorStatus  = "status"
	ErrorParsing = "parsing"
	ErrorNotify  = "notify"
	ErrorStore   = "store"
	ErrorUnknown = "unknown"
)

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Status >= http.StatusBadRequest:
			return ErrorStatus
		case fe.Status == 0:
			return ErrorNetwork
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

// ClassifyScrapeError buckets a failed site fetch. Anything that is not a
// recognised status or transport failure counts as network.
func ClassifyScrapeError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	return ErrorNetwork
}
