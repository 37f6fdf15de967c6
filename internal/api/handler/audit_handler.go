package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vicentemv/user-management-api/internal/core/ports"
)

// AuditHandler exposes the audit trail. Both routes are admin-gated by
// middleware; the caller's role is still passed down so the core enforces
// the authorization decision independently of the transport wiring.
type AuditHandler struct {
	service ports.AuditQueryService
}

func NewAuditHandler(service ports.AuditQueryService) *AuditHandler {
	return &AuditHandler{service: service}
}

// ListAll returns every audit entry, newest first.
func (h *AuditHandler) ListAll(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	entries, err := h.service.ListAll(c.Request().Context(), id.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// ListForSubject returns the audit entries for one account, newest first.
// An account with no history yields an empty list.
func (h *AuditHandler) ListForSubject(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	entries, err := h.service.ListForSubject(c.Request().Context(), id.Role, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
