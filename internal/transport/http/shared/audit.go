package shared

import (
	"log/slog"
	"net/http"

	"ems/internal/domain/audit"
	"ems/internal/transport/http/middleware"
)

// Audit records action against the request's session. Failures are logged
// and never fail the request. A nil service disables auditing.
func Audit(r *http.Request, svc *audit.Service, actor, action, entityType, entityID string, before, after any) {
	if svc == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := svc.Record(r.Context(), actor, action, entityType, entityID, requestID, middleware.ClientIP(r), before, after); err != nil {
		slog.Warn("audit "+action+" failed", "err", err, "requestId", requestID)
	}
}
