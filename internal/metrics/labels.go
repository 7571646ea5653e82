package metrics

import (
	"errors"

	"shareaudit/internal/domain"
	"shareaudit/internal/recon"
)

func domainResult(r recon.DomainResult) string {
	switch {
	case r.Err == nil && r.Server.Fallback:
		return "fallback"
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, domain.ErrNoReachableServer):
		return "no_reachable_server"
	case errors.Is(r.Err, domain.ErrEnumerationFailed):
		return "enumeration_failed"
	default:
		return "error"
	}
}

func shareResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
