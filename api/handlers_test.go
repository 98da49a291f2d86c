package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ablelink/invest-engine/auth"
	"github.com/ablelink/invest-engine/calendar"
	"github.com/ablelink/invest-engine/invest"
	"github.com/ablelink/invest-engine/market"
	"github.com/ablelink/invest-engine/notify"
	"github.com/ablelink/invest-engine/payment"
	"github.com/ablelink/invest-engine/store/memory"
	"github.com/ablelink/invest-engine/window"
	"github.com/ablelink/invest-engine/workflow"
)

// July 1 2025 is a Tuesday with no holiday: the window is exactly [1st, 2nd].
var insideWindow = time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
var outsideWindow = time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)

// fakeInitializer stands in for the payment gateway.
type fakeInitializer struct {
	tx    payment.Transaction
	err   error
	calls int
}

func (f *fakeInitializer) Initialize(context.Context, string, decimal.Decimal) (payment.Transaction, error) {
	f.calls++
	return f.tx, f.err
}

// fakeFetcher stands in for the market data provider.
type fakeFetcher struct {
	points []market.Point
	err    error
}

func (f *fakeFetcher) Series(context.Context, string, string) ([]market.Point, error) {
	return f.points, f.err
}

// countingDispatcher counts notifications by kind.
type countingDispatcher struct {
	notify.Null
	welcomes           int
	adminNewUsers      int
	investmentRequests int
	withdrawalRequests int
	windowOpens        int
}

func (c *countingDispatcher) SendWelcome(context.Context, invest.UserProfile) error {
	c.welcomes++
	return nil
}
func (c *countingDispatcher) SendAdminNewUser(context.Context, invest.UserProfile) error {
	c.adminNewUsers++
	return nil
}
func (c *countingDispatcher) SendInvestmentRequest(context.Context, invest.UserProfile, notify.InvestmentDetails) error {
	c.investmentRequests++
	return nil
}
func (c *countingDispatcher) SendWithdrawalRequest(context.Context, invest.UserProfile, notify.WithdrawalDetails) error {
	c.withdrawalRequests++
	return nil
}
func (c *countingDispatcher) SendWindowOpen(context.Context, invest.UserProfile, time.Time, time.Time) error {
	c.windowOpens++
	return nil
}

type testServer struct {
	store      *memory.Store
	handler    *Handler
	router     http.Handler
	dispatcher *countingDispatcher
	payments   *fakeInitializer
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	store := memory.New()
	dispatcher := &countingDispatcher{}
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	windows := window.NewResolver(calendar.New())
	engine := workflow.New(store, dispatcher, log.New(io.Discard, "", 0))

	h := NewHandler(store, engine, dispatcher, windows, tokens)
	h.Logger = log.New(io.Discard, "", 0)
	h.now = func() time.Time { return now }

	payments := &fakeInitializer{tx: payment.Transaction{
		AuthorizationURL: "https://checkout.example/abc",
		Reference:        "T123456789",
	}}
	h.Payments = payments

	return &testServer{
		store:      store,
		handler:    h,
		router:     NewRouter(h, []string{"http://localhost:3000"}),
		dispatcher: dispatcher,
		payments:   payments,
	}
}

// seedUser persists a user and returns a valid bearer token.
func (ts *testServer) seedUser(t *testing.T, u invest.UserProfile) string {
	t.Helper()
	if u.PasswordHash == "" {
		hash, err := auth.HashPassword("hunter22")
		require.NoError(t, err)
		u.PasswordHash = hash
	}
	require.NoError(t, ts.store.PutUser(context.Background(), u))
	token, err := ts.handler.Tokens.Issue(u)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}

// =============================================================================
// AUTH
// =============================================================================

func TestRegister_CreatesAccountAndSendsEmails(t *testing.T) {
	ts := newTestServer(t, insideWindow)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName: "Ada Obi", Email: "ada@example.com", Password: "hunter22",
		BankName: "First Bank", AccountNumber: "0123456789",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decodeBody[SessionDTO](t, rec)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, 1, ts.dispatcher.welcomes)
	assert.Equal(t, 1, ts.dispatcher.adminNewUsers)

	// The issued token authenticates.
	rec = ts.do(t, http.MethodGet, "/api/profile", session.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		FullName: "Other Ada", Email: "ada@example.com", Password: "hunter22",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPasswordAndDisabledAccount(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, ts.store.SetUserDisabled(context.Background(), "u1", true))
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireUser_MissingAndDisabled(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token issued before the account was disabled stops working.
	require.NoError(t, ts.store.SetUserDisabled(context.Background(), "u1", true))
	rec = ts.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =============================================================================
// PIN
// =============================================================================

func TestPIN_SetAndVerify(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/profile/pin", token, PINRequest{PIN: "1234"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Verification requires a fresh user load; re-issue the token context by
	// calling the endpoint (middleware reloads the profile each request).
	rec = ts.do(t, http.MethodPost, "/api/profile/pin/verify", token, PINRequest{PIN: "1234"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/profile/pin/verify", token, PINRequest{PIN: "4321"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/profile/pin", token, PINRequest{PIN: "12ab"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// INVESTMENT SUBMISSION
// =============================================================================

func TestSubmitInvestment_HappyPath(t *testing.T) {
	// GIVEN: an authenticated user inside the submission window
	// WHEN: a valid plan submission is made
	// THEN: payment is initialized, the pending record is persisted with the
	//       gateway reference as display id, and the admin is alerted
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/investments", token, SubmitInvestmentRequest{
		PlanID: "moderate", Amount: decimal.NewFromInt(100000),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[SubmitInvestmentResponse](t, rec)
	assert.Equal(t, "https://checkout.example/abc", resp.AuthorizationURL)
	assert.Equal(t, "T123456789", resp.Investment.DisplayID)
	assert.Equal(t, "Pending", resp.Investment.Status)

	stored, err := ts.store.ListInvestments(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "T123456789", stored[0].DisplayID)
	assert.Equal(t, 1, ts.dispatcher.investmentRequests)
}

func TestSubmitInvestment_WindowClosed(t *testing.T) {
	ts := newTestServer(t, outsideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/investments", token, SubmitInvestmentRequest{
		PlanID: "moderate", Amount: decimal.NewFromInt(100000),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, ts.payments.calls)
}

func TestSubmitInvestment_PrivilegedBypassesWindow(t *testing.T) {
	ts := newTestServer(t, outsideWindow)
	token := ts.seedUser(t, invest.UserProfile{
		ID: "u1", FullName: "Ada", Email: "ada@example.com",
		PrivilegedWithdrawalAccess: true,
	})

	rec := ts.do(t, http.MethodPost, "/api/investments", token, SubmitInvestmentRequest{
		PlanID: "moderate", Amount: decimal.NewFromInt(100000),
	})

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSubmitInvestment_BelowPlanMinimum(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodPost, "/api/investments", token, SubmitInvestmentRequest{
		PlanID: "moderate", Amount: decimal.NewFromInt(10000),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, ts.payments.calls)
}

func TestSubmitInvestment_GatewayFailureLeavesNoRecord(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})
	ts.payments.err = &invest.ExternalServiceError{Service: "paystack", Err: errors.New("down")}

	rec := ts.do(t, http.MethodPost, "/api/investments", token, SubmitInvestmentRequest{
		PlanID: "moderate", Amount: decimal.NewFromInt(100000),
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	stored, _ := ts.store.ListInvestments(context.Background(), "u1")
	assert.Empty(t, stored)
}

// =============================================================================
// WITHDRAWAL SUBMISSION
// =============================================================================

// seedEligibleInvestor creates a user with a PIN of 1234 and an approved
// 100,000 investment from two months back (20,000 available in July).
func seedEligibleInvestor(t *testing.T, ts *testServer) string {
	t.Helper()
	hash, err := auth.HashPIN("1234")
	require.NoError(t, err)
	token := ts.seedUser(t, invest.UserProfile{
		ID: "u1", FullName: "Ada", Email: "ada@example.com", WithdrawalPINHash: hash,
	})
	require.NoError(t, ts.store.PutInvestment(context.Background(), invest.Investment{
		ID: "inv-1", DisplayID: "REF-1", UserID: "u1",
		Type: "Moderate - 20% Monthly", Amount: decimal.NewFromInt(100000),
		Status:    invest.InvestmentStatusApproved,
		CreatedAt: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
	}))
	return token
}

func TestSubmitWithdrawal_HappyPath(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(15000), PIN: "1234",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wd := decodeBody[WithdrawalDTO](t, rec)
	assert.Equal(t, "1", wd.DisplayID)
	assert.True(t, wd.ManagementFee.Equal(decimal.NewFromInt(300)), "fee %s", wd.ManagementFee)
	assert.True(t, wd.PayoutAmount.Equal(decimal.NewFromInt(14700)))
	assert.Equal(t, "Pending", wd.Status)
	assert.Equal(t, 1, ts.dispatcher.withdrawalRequests)
}

func TestSubmitWithdrawal_WrongPIN(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(15000), PIN: "0000",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitWithdrawal_BelowMinimum(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(1500), PIN: "1234",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitWithdrawal_CeilingRecheckedAgainstStore(t *testing.T) {
	// Available is 20,000. The first request takes 15,000; the second asks
	// for 6,000 and must fail against the recomputed ceiling.
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(15000), PIN: "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(6000), PIN: "1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Exactly the remainder still goes through.
	rec = ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(5000), PIN: "1234",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	wd := decodeBody[WithdrawalDTO](t, rec)
	assert.Equal(t, "2", wd.DisplayID) // per-user sequence
}

func TestSubmitWithdrawal_WindowClosedUnlessPrivileged(t *testing.T) {
	ts := newTestServer(t, outsideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/withdrawals", token, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(15000), PIN: "1234",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Privileged account: window bypassed, fee waived.
	hash, err := auth.HashPIN("1234")
	require.NoError(t, err)
	privToken := ts.seedUser(t, invest.UserProfile{
		ID: "u2", FullName: "Root", Email: "root@example.com",
		PrivilegedWithdrawalAccess: true, WithdrawalPINHash: hash,
	})
	require.NoError(t, ts.store.PutInvestment(context.Background(), invest.Investment{
		ID: "inv-2", DisplayID: "REF-2", UserID: "u2",
		Type: "Moderate - 20% Monthly", Amount: decimal.NewFromInt(100000),
		Status:    invest.InvestmentStatusApproved,
		CreatedAt: time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
	}))

	rec = ts.do(t, http.MethodPost, "/api/withdrawals", privToken, SubmitWithdrawalRequest{
		Amount: decimal.NewFromInt(15000), PIN: "1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	wd := decodeBody[WithdrawalDTO](t, rec)
	assert.True(t, wd.ManagementFee.IsZero())
	assert.True(t, wd.PayoutAmount.Equal(decimal.NewFromInt(15000)))
}

// =============================================================================
// BALANCE / WINDOW / MARKET
// =============================================================================

func TestGetBalance(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/balance", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	b := decodeBody[BalanceDTO](t, rec)
	assert.True(t, b.TotalMonthlyPayout.Equal(decimal.NewFromInt(20000)), "payout %s", b.TotalMonthlyPayout)
	assert.True(t, b.Available.Equal(decimal.NewFromInt(20000)))
	assert.True(t, b.WithdrawnThisMonth.IsZero())
}

func TestGetWindow(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	rec := ts.do(t, http.MethodGet, "/api/window", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	win := decodeBody[WindowDTO](t, rec)
	assert.Equal(t, "2025-07-01", win.Start)
	assert.Equal(t, "2025-07-02", win.End)
	assert.True(t, win.Open)
}

func TestGetMarketSeries(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := ts.seedUser(t, invest.UserProfile{ID: "u1", FullName: "Ada", Email: "ada@example.com"})

	// Not configured: 404.
	rec := ts.do(t, http.MethodGet, "/api/market/series?from=USD&to=NGN", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	ts.handler.Market = &fakeFetcher{points: []market.Point{{Time: "10:00", Price: 1500}}}
	rec = ts.do(t, http.MethodGet, "/api/market/series?from=USD&to=NGN", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	points := decodeBody[[]market.Point](t, rec)
	require.Len(t, points, 1)
	assert.Equal(t, "10:00", points[0].Time)

	ts.handler.Market = &fakeFetcher{err: &invest.ExternalServiceError{Service: "twelvedata", Err: fmt.Errorf("down")}}
	rec = ts.do(t, http.MethodGet, "/api/market/series?from=USD&to=NGN", token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListInvestments_CarriesAccruals(t *testing.T) {
	ts := newTestServer(t, insideWindow)
	token := seedEligibleInvestor(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/investments", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	invs := decodeBody[[]InvestmentDTO](t, rec)
	require.Len(t, invs, 1)
	assert.True(t, invs[0].MonthlyPayout.Equal(decimal.NewFromInt(20000)))
	assert.True(t, invs[0].AccruedProfit.IsPositive())
}
