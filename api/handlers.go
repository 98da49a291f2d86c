/*
handlers.go - HTTP API handlers for the investment platform

PURPOSE:
  Exposes the accrual and withdrawal engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/register          Create account, issue session token
    POST   /api/auth/login             Exchange credentials for a token

  Profile:
    GET    /api/profile                Current profile
    PUT    /api/profile                Update display/payout details
    POST   /api/profile/pin            Set withdrawal PIN
    POST   /api/profile/pin/verify     Verify withdrawal PIN

  Portfolio:
    GET    /api/plans                  Plans open for submission
    GET    /api/investments            List own investments with accruals
    POST   /api/investments            Submit investment (checkout redirect)
    GET    /api/withdrawals            List own withdrawals
    POST   /api/withdrawals            Submit withdrawal request
    GET    /api/balance                Withdrawable balance
    GET    /api/window                 Current month's submission window
    GET    /api/market/series          Currency chart series

  Admin: see admin.go.

SUBMISSION INVARIANTS:
  Investments: window open (unless privileged), plan bounds, payment
  initialization success strictly before persisting.
  Withdrawals: PIN verified first, minimum 2000, window open (unless
  privileged), ceiling recomputed server-side immediately before persisting.

ERROR HANDLING:
  Domain errors map to HTTP status via writeDomainError:
  - 400: validation, ceiling exceeded
  - 401: authentication
  - 404: not found
  - 409: transition from a terminal status
  - 502: payment/email/market provider failure
  - 500: everything else
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ablelink/invest-engine/auth"
	"github.com/ablelink/invest-engine/invest"
	"github.com/ablelink/invest-engine/market"
	"github.com/ablelink/invest-engine/notify"
	"github.com/ablelink/invest-engine/payment"
	"github.com/ablelink/invest-engine/reconcile"
	"github.com/ablelink/invest-engine/window"
	"github.com/ablelink/invest-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      invest.Store
	Workflow   *workflow.Engine
	Dispatcher notify.Dispatcher
	Windows    *window.Resolver
	Tokens     *auth.TokenIssuer

	// Payments may be nil when the gateway is disabled; investment
	// submission is then rejected.
	Payments payment.Initializer

	// Market may be nil; the chart endpoint then 404s.
	Market market.Fetcher

	Plans  []invest.Plan
	Logger *log.Logger

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewHandler wires a Handler with the given dependencies.
func NewHandler(store invest.Store, wf *workflow.Engine, dispatcher notify.Dispatcher, windows *window.Resolver, tokens *auth.TokenIssuer) *Handler {
	if dispatcher == nil {
		dispatcher = notify.Null{}
	}
	return &Handler{
		Store:      store,
		Workflow:   wf,
		Dispatcher: dispatcher,
		Windows:    windows,
		Tokens:     tokens,
		Plans:      invest.DefaultPlans(),
		Logger:     log.Default(),
		now:        time.Now,
	}
}

// =============================================================================
// AUTH
// =============================================================================

// Register creates an account and issues a session token.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.FullName == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "full_name and email are required", nil)
		return
	}

	if _, err := h.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered", nil)
		return
	} else if !errors.Is(err, invest.ErrNotFound) {
		h.writeDomainError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	user := invest.UserProfile{
		ID:             uuid.NewString(),
		FullName:       req.FullName,
		Email:          req.Email,
		PasswordHash:   hash,
		WhatsAppNumber: req.WhatsAppNumber,
		BankName:       req.BankName,
		AccountName:    req.AccountName,
		AccountNumber:  req.AccountNumber,
		CreatedAt:      h.now(),
	}
	if err := h.Store.PutUser(r.Context(), user); err != nil {
		h.writeDomainError(w, err)
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	// Welcome + admin alert are best-effort.
	if err := h.Dispatcher.SendWelcome(r.Context(), user); err != nil {
		h.Logger.Printf("register: welcome email failed: %v", err)
	}
	if err := h.Dispatcher.SendAdminNewUser(r.Context(), user); err != nil {
		h.Logger.Printf("register: admin alert failed: %v", err)
	}

	writeJSON(w, http.StatusCreated, SessionDTO{Token: token, User: toUserDTO(user)})
}

// Login exchanges credentials for a session token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Indistinct from a wrong password.
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if user.Disabled {
		writeError(w, http.StatusUnauthorized, "Account disabled", nil)
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{Token: token, User: toUserDTO(user)})
}

// =============================================================================
// PROFILE
// =============================================================================

// GetProfile returns the authenticated profile.
// GET /api/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(currentUser(r.Context())))
}

// UpdateProfile updates display and payout details.
// PUT /api/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := currentUser(r.Context())
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	user.WhatsAppNumber = req.WhatsAppNumber
	user.BankName = req.BankName
	user.AccountName = req.AccountName
	user.AccountNumber = req.AccountNumber

	if err := h.Store.PutUser(r.Context(), user); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// SetPIN stores the withdrawal PIN hash.
// POST /api/profile/pin
func (h *Handler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hash, err := auth.HashPIN(req.PIN)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if err := h.Store.SetWithdrawalPINHash(r.Context(), currentUser(r.Context()).ID, hash); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VerifyPIN checks the withdrawal PIN without any side effect.
// POST /api/profile/pin/verify
func (h *Handler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req PINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := auth.VerifyPIN(currentUser(r.Context()).WithdrawalPINHash, req.PIN); err != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect PIN", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PORTFOLIO
// =============================================================================

// ListPlans returns the plan catalog open for submission.
// GET /api/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	dtos := make([]PlanDTO, len(h.Plans))
	for i, p := range h.Plans {
		dtos[i] = toPlanDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListInvestments returns the caller's investments with live accruals.
// GET /api/investments
func (h *Handler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Store.ListInvestments(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentDTOs(invs, h.now()))
}

// SubmitInvestment initializes payment and persists the pending investment.
// POST /api/investments
func (h *Handler) SubmitInvestment(w http.ResponseWriter, r *http.Request) {
	var req SubmitInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := currentUser(r.Context())
	now := h.now()

	if !user.PrivilegedWithdrawalAccess && !h.Windows.Open(now) {
		writeError(w, http.StatusBadRequest, "Submission window is closed", h.windowDetail(now))
		return
	}

	plan, ok := invest.PlanByID(h.Plans, req.PlanID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown plan", nil)
		return
	}
	if err := plan.ValidateAmount(req.Amount); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if h.Payments == nil {
		writeError(w, http.StatusServiceUnavailable, "Payments are not enabled", nil)
		return
	}

	// Charge first. A gateway failure must not leave a dangling record.
	tx, err := h.Payments.Initialize(r.Context(), user.Email, req.Amount)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	inv := invest.Investment{
		ID:        uuid.NewString(),
		DisplayID: tx.Reference,
		UserID:    user.ID,
		Type:      plan.Label,
		Amount:    req.Amount,
		Status:    invest.InvestmentStatusPending,
		CreatedAt: now,
	}
	if err := h.Store.PutInvestment(r.Context(), inv); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.Dispatcher.SendInvestmentRequest(r.Context(), user, notify.InvestmentDetailsOf(inv)); err != nil {
		h.Logger.Printf("investment %s: admin alert failed: %v", inv.ID, err)
	}

	writeJSON(w, http.StatusCreated, SubmitInvestmentResponse{
		Investment:       toInvestmentDTO(inv, now),
		AuthorizationURL: tx.AuthorizationURL,
	})
}

// ListWithdrawals returns the caller's withdrawals.
// GET /api/withdrawals
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Store.ListWithdrawals(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWithdrawalDTOs(ws))
}

// SubmitWithdrawal validates and persists a withdrawal request.
// POST /api/withdrawals
func (h *Handler) SubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req SubmitWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user := currentUser(r.Context())
	now := h.now()

	// PIN gate comes before anything is revealed about the balance.
	if err := auth.VerifyPIN(user.WithdrawalPINHash, req.PIN); err != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect PIN", nil)
		return
	}

	if err := invest.ValidateWithdrawalAmount(req.Amount); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if !user.PrivilegedWithdrawalAccess && !h.Windows.Open(now) {
		writeError(w, http.StatusBadRequest, "Submission window is closed", h.windowDetail(now))
		return
	}

	// Ceiling is recomputed here, against current store state, immediately
	// before the write.
	balance, err := h.availableBalance(r, user.ID, now)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !balance.Allows(req.Amount) {
		h.writeDomainError(w, &invest.CeilingExceededError{
			Requested: req.Amount,
			Available: balance.Available,
		})
		return
	}

	count, err := h.Store.CountWithdrawals(r.Context(), user.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	wd := invest.NewWithdrawal(
		uuid.NewString(),
		displayID(count+1),
		user.ID,
		req.Amount,
		user.PrivilegedWithdrawalAccess,
		now,
	)
	if err := h.Store.PutWithdrawal(r.Context(), wd); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.Dispatcher.SendWithdrawalRequest(r.Context(), user, notify.WithdrawalDetailsOf(wd)); err != nil {
		h.Logger.Printf("withdrawal %s: admin alert failed: %v", wd.ID, err)
	}

	writeJSON(w, http.StatusCreated, toWithdrawalDTO(wd))
}

// GetBalance returns the withdrawable balance summary.
// GET /api/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	balance, err := h.availableBalance(r, currentUser(r.Context()).ID, now)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance, now))
}

// GetWindow reports the submission window for the current month.
// GET /api/window
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	win := h.Windows.Resolve(now.Year(), now.Month())
	writeJSON(w, http.StatusOK, toWindowDTO(win, now))
}

// GetMarketSeries proxies the currency chart series.
// GET /api/market/series?from=USD&to=NGN
func (h *Handler) GetMarketSeries(w http.ResponseWriter, r *http.Request) {
	if h.Market == nil {
		writeError(w, http.StatusNotFound, "Market data is not configured", nil)
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required", nil)
		return
	}

	points, err := h.Market.Series(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// availableBalance loads the caller's records and runs the reconciliation.
func (h *Handler) availableBalance(r *http.Request, userID string, now time.Time) (reconcile.Balance, error) {
	invs, err := h.Store.ListInvestments(r.Context(), userID)
	if err != nil {
		return reconcile.Balance{}, err
	}
	ws, err := h.Store.ListWithdrawals(r.Context(), userID)
	if err != nil {
		return reconcile.Balance{}, err
	}
	return reconcile.AvailableBalance(invs, ws, now), nil
}

func (h *Handler) windowDetail(now time.Time) WindowDTO {
	return toWindowDTO(h.Windows.Resolve(now.Year(), now.Month()), now)
}

func displayID(n int) string {
	return strconv.Itoa(n)
}

// writeDomainError maps a domain error to its HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invest.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, invest.ErrAuthentication):
		writeError(w, http.StatusUnauthorized, "Authentication failed", nil)
	case errors.Is(err, invest.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, invest.ErrTerminalStatus):
		writeError(w, http.StatusConflict, "Status is already final", nil)
	case errors.Is(err, invest.ErrExternalService):
		h.Logger.Printf("external service failure: %v", err)
		writeError(w, http.StatusBadGateway, "Upstream service failed", nil)
	default:
		h.Logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}
