package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-registry/internal/audit"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// auditWriteTimeout bounds an audit insert after the request finished.
const auditWriteTimeout = 5 * time.Second

// recordAudit writes an audit entry for a mutating request. Failures are
// logged and never change the response.
func (s *Server) recordAudit(r *http.Request, action string, p registry.Path, details map[string]any, opErr error) {
	if s.audit == nil {
		return
	}
	if opErr != nil {
		if details == nil {
			details = map[string]any{}
		}
		details["error"] = opErr.Error()
	}

	entry := &audit.AuditLog{
		Action:  action,
		Path:    p.String(),
		Source:  audit.SourceAPI,
		Details: details,
	}
	if claims := claimsFromContext(r.Context()); claims != nil {
		entry.Subject = claims.Subject
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditWriteTimeout)
	defer cancel()
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", action, "path", entry.Path, "error", err)
	}
}

// handleListAudit returns audit entries, most recent first.
// Query: action, path (numeric or named), limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{Action: q.Get("action")}

	if raw := q.Get("path"); raw != "" {
		p, err := s.registry.ResolveNamed(raw)
		if err != nil {
			writeRegistryError(w, err)
			return
		}
		if !p.IsRoot() {
			filter.Path = p.String()
		}
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if raw := q.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeBadRequest(w, name+" must be an integer")
				return
			}
			*dst = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit logs failed", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
