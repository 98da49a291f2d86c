/*
admin.go - Administrator HTTP handlers

PURPOSE:
  The approval and support surface: pending queues, status decisions (through
  the workflow engine so exactly one notification goes out per decision),
  account enable/disable, and the portfolio report (download or emailed with
  an optional date range).

ROUTES (all behind RequireUser + RequireAdmin):
  GET    /api/admin/users                              List all users
  GET    /api/admin/investments/pending                Pending investments
  GET    /api/admin/withdrawals/pending                Pending withdrawals
  POST   /api/admin/users/{userID}/investments/{id}/approve
  POST   /api/admin/users/{userID}/investments/{id}/reject
  POST   /api/admin/users/{userID}/withdrawals/{id}/complete
  POST   /api/admin/users/{userID}/withdrawals/{id}/reject
  POST   /api/admin/users/{userID}/disable
  POST   /api/admin/users/{userID}/enable
  GET    /api/admin/users/{userID}/export              Download workbook
  POST   /api/admin/users/{userID}/report              Email workbook
  POST   /api/admin/notifications/window               Resend window-open mail
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ablelink/invest-engine/export"
	"github.com/ablelink/invest-engine/invest"
)

// =============================================================================
// QUEUES
// =============================================================================

// ListUsers returns every profile.
// GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPendingInvestments returns the approval queue.
// GET /api/admin/investments/pending
func (h *Handler) ListPendingInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Store.ListInvestmentsByStatus(r.Context(), invest.InvestmentStatusPending)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTOs(invs, h.now()))
}

// ListPendingWithdrawals returns the payout queue.
// GET /api/admin/withdrawals/pending
func (h *Handler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Store.ListWithdrawalsByStatus(r.Context(), invest.WithdrawalStatusPending)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalDTOs(ws))
}

// =============================================================================
// DECISIONS
// =============================================================================

// DecideInvestment transitions an investment and notifies the owner.
// POST /api/admin/users/{userID}/investments/{id}/approve|reject
func (h *Handler) DecideInvestment(status invest.InvestmentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		id := chi.URLParam(r, "id")

		inv, err := h.Workflow.TransitionInvestment(r.Context(), userID, id, status)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvestmentDTO(inv, h.now()))
	}
}

// DecideWithdrawal transitions a withdrawal and notifies the owner.
// POST /api/admin/users/{userID}/withdrawals/{id}/complete|reject
func (h *Handler) DecideWithdrawal(status invest.WithdrawalStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		id := chi.URLParam(r, "id")

		wd, err := h.Workflow.TransitionWithdrawal(r.Context(), userID, id, status)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toWithdrawalDTO(wd))
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// SetUserDisabled flips the account flag.
// POST /api/admin/users/{userID}/disable|enable
func (h *Handler) SetUserDisabled(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if err := h.Store.SetUserDisabled(r.Context(), userID, disabled); err != nil {
			h.writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// =============================================================================
// REPORTS
// =============================================================================

// ExportWorkbook streams the xlsx report for a user.
// GET /api/admin/users/{userID}/export?start=2025-01-01&end=2025-03-31
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	rng, err := parseDateRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err.Error())
		return
	}

	raw, _, err := h.buildWorkbook(r, userID, rng)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// EmailReport builds the workbook and emails it to the user.
// POST /api/admin/users/{userID}/report
func (h *Handler) EmailReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req ReportRequest
	if r.Body != nil {
		// Empty body means all time.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	rng, err := parseDateRange(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err.Error())
		return
	}

	raw, user, err := h.buildWorkbook(r, userID, rng)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.Dispatcher.SendPortfolioReport(r.Context(), user, raw, rng.Label()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotifyWindowOpen resends the window-open notification to all active users.
// POST /api/admin/notifications/window
func (h *Handler) NotifyWindowOpen(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	win := h.Windows.Resolve(now.Year(), now.Month())

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	sent := 0
	for _, u := range users {
		if u.Disabled {
			continue
		}
		if err := h.Dispatcher.SendWindowOpen(r.Context(), u, win.Start, win.End); err != nil {
			h.Logger.Printf("window notification to %s failed: %v", u.Email, err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

// buildWorkbook loads a user's records and renders the report.
func (h *Handler) buildWorkbook(r *http.Request, userID string, rng export.DateRange) ([]byte, invest.UserProfile, error) {
	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		return nil, invest.UserProfile{}, err
	}
	invs, err := h.Store.ListInvestments(r.Context(), userID)
	if err != nil {
		return nil, invest.UserProfile{}, err
	}
	ws, err := h.Store.ListWithdrawals(r.Context(), userID)
	if err != nil {
		return nil, invest.UserProfile{}, err
	}

	raw, err := export.Workbook(user, invs, ws, rng)
	return raw, user, err
}

func parseDateRange(start, end string) (export.DateRange, error) {
	if start == "" && end == "" {
		return export.DateRange{}, nil
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return export.DateRange{}, err
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return export.DateRange{}, err
	}
	return export.DateRange{Start: s, End: e}, nil
}
