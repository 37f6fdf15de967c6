package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/vicentemv/user-management-api/internal/core/domain"
	"github.com/vicentemv/user-management-api/internal/core/ports"
)

type stubAuditService struct {
	listAllFn        func(ctx context.Context, callerRole string) ([]ports.AuditView, error)
	listForSubjectFn func(ctx context.Context, callerRole, subjectID string) ([]ports.AuditView, error)
}

func (s *stubAuditService) ListAll(ctx context.Context, callerRole string) ([]ports.AuditView, error) {
	return s.listAllFn(ctx, callerRole)
}

func (s *stubAuditService) ListForSubject(ctx context.Context, callerRole, subjectID string) ([]ports.AuditView, error) {
	return s.listForSubjectFn(ctx, callerRole, subjectID)
}

func sampleView() ports.AuditView {
	return ports.AuditView{
		ID:             "a1",
		SubjectID:      "u2",
		ChangedBy:      "admin1",
		ChangedByName:  "root",
		ChangedByEmail: "root@x.com",
		ChangeType:     "update",
		Changes:        map[string]any{"role": map[string]any{"from": "user", "to": "admin"}},
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAuditHandler_ListAll(t *testing.T) {
	stub := &stubAuditService{
		listAllFn: func(_ context.Context, callerRole string) ([]ports.AuditView, error) {
			if callerRole != domain.RoleAdmin {
				t.Fatalf("expected admin role passed down, got %s", callerRole)
			}
			return []ports.AuditView{sampleView()}, nil
		},
	}
	h := NewAuditHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/admin/audits", "")
	asUser(c, "admin1", domain.RoleAdmin)
	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var views []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v["subjectId"] != "u2" || v["changedBy"] != "admin1" || v["changeType"] != "update" {
		t.Fatalf("wire fields wrong: %+v", v)
	}
	if v["changedByUsername"] != "root" {
		t.Fatalf("expected denormalized actor name, got %+v", v)
	}
	if _, ok := v["createdAt"]; !ok {
		t.Fatalf("missing createdAt: %+v", v)
	}
}

func TestAuditHandler_ListAll_Forbidden(t *testing.T) {
	stub := &stubAuditService{
		listAllFn: func(context.Context, string) ([]ports.AuditView, error) {
			return nil, domain.ErrForbidden
		},
	}
	h := NewAuditHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/v1/admin/audits", "")
	asUser(c, "u1", domain.RoleUser)
	if err := h.ListAll(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuditHandler_ListForSubject(t *testing.T) {
	stub := &stubAuditService{
		listForSubjectFn: func(_ context.Context, callerRole, subjectID string) ([]ports.AuditView, error) {
			if callerRole != domain.RoleAdmin || subjectID != "u2" {
				t.Fatalf("unexpected args: %s %s", callerRole, subjectID)
			}
			return []ports.AuditView{}, nil
		},
	}
	h := NewAuditHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/audit/u2/logs", "")
	asUser(c, "admin1", domain.RoleAdmin)
	c.SetParamNames("userId")
	c.SetParamValues("u2")
	if err := h.ListForSubject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// No history serializes as an empty array, not null.
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestAuditHandler_ListForSubject_MalformedID(t *testing.T) {
	stub := &stubAuditService{
		listForSubjectFn: func(context.Context, string, string) ([]ports.AuditView, error) {
			return nil, domain.ErrInvalidID
		},
	}
	h := NewAuditHandler(stub)

	c, _ := newTestContext(t, http.MethodGet, "/api/v1/audit/not-an-id/logs", "")
	asUser(c, "admin1", domain.RoleAdmin)
	c.SetParamNames("userId")
	c.SetParamValues("not-an-id")
	if err := h.ListForSubject(c); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
