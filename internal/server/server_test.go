package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/server"
	"github.com/beesaferoot/boardinghouse/internal/store"
	"github.com/beesaferoot/boardinghouse/internal/testutil"
)

const secret = "test-secret"

func newServer(t *testing.T) (*server.Server, *store.Store) {
	t.Helper()
	s := testutil.NewStore(t)
	srv, err := server.New(server.Deps{
		Store:     s,
		Clock:     billing.FixedClock{T: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		JWTSecret: secret,
	})
	require.NoError(t, err)
	return srv, s
}

func token(t *testing.T, perms ...string) string {
	t.Helper()
	tok, err := server.IssueToken(secret, "admin", perms, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, srv *server.Server, method, path, tok, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := server.New(server.Deps{Store: testutil.NewStore(t)})
	assert.Error(t, err)
}

func TestHealthAndRequestID(t *testing.T) {
	srv, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthentication(t *testing.T) {
	srv, _ := newServer(t)

	code, _ := do(t, srv, http.MethodGet, "/api/reports/occupancy", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, srv, http.MethodGet, "/api/reports/occupancy", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, err := server.IssueToken("other-secret", "admin", server.AllPermissions, time.Hour)
	require.NoError(t, err)
	code, _ = do(t, srv, http.MethodGet, "/api/reports/occupancy", forged, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, srv, http.MethodGet, "/api/reports/occupancy", token(t, server.PermViewRoom), "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "permission denied", body["error"])
}

func TestOccupancyEndpoint(t *testing.T) {
	srv, s := newServer(t)
	room := testutil.Room(t, s, "101", "1000")
	testutil.Room(t, s, "102", "1000")
	testutil.Tenant(t, s, "Ana", room, "2026-01-01")

	code, body := do(t, srv, http.MethodGet, "/api/reports/occupancy", token(t, server.PermViewRoom, server.PermViewTenant), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total_rooms"])
	assert.Equal(t, float64(1), body["occupied_rooms_count"])
	assert.Equal(t, float64(1), body["vacant_rooms_count"])
	assert.Equal(t, "50.00%", body["occupancy_rate"])
}

func TestFinancialSummaryEndpoint(t *testing.T) {
	srv, s := newServer(t)
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01")
	testutil.Bill(t, s, tenant, models.BillTypeOther, "75", "2026-10-20")

	code, body := do(t, srv, http.MethodGet, "/api/reports/financial-summary", token(t, server.PermViewBill, server.PermViewPayment), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "75", body["total_unpaid_all_time"])
	assert.Equal(t, "0", body["total_paid_this_month"])
	assert.Equal(t, "October 2026", body["current_month_name"])
}

func TestPaymentEndpoints(t *testing.T) {
	srv, s := newServer(t)
	tenant := testutil.Tenant(t, s, "Ana", nil, "2026-01-01")
	bill := testutil.Bill(t, s, tenant, models.BillTypeOther, "100", "2026-10-20")
	tok := token(t, server.PermChangePayment)

	code, body := do(t, srv, http.MethodPost, "/api/payments", tok, `{"bill_id": 1, "amount_paid": "100", "payment_method": "cash"}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, true, body["bill_is_paid"])
	payment := body["payment"].(map[string]interface{})
	id := int(payment["id"].(float64))
	require.Equal(t, uint(1), bill.ID)

	code, body = do(t, srv, http.MethodPatch, "/api/payments/"+itoa(id), tok, `{"amount_paid": "40"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["bill_is_paid"])

	code, body = do(t, srv, http.MethodDelete, "/api/payments/"+itoa(id), tok, "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["bill_is_paid"])

	code, _ = do(t, srv, http.MethodDelete, "/api/payments/"+itoa(id), tok, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, srv, http.MethodPost, "/api/payments", tok, `{"bill_id": 1, "amount_paid": "-1"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodPost, "/api/payments", tok, `{"amount_paid": "10"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, http.MethodPost, "/api/payments", tok, `{"bill_id": 99, "amount_paid": "10"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoomTenantAndReadingEndpoints(t *testing.T) {
	srv, _ := newServer(t)
	admin := token(t, server.AllPermissions...)

	code, body := do(t, srv, http.MethodPost, "/api/rooms", admin, `{"room_number": "101", "base_rent": "1500.00"}`)
	require.Equal(t, http.StatusCreated, code, body)

	code, _ = do(t, srv, http.MethodPost, "/api/rooms", admin, `{"room_number": "101", "base_rent": "1500.00"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, srv, http.MethodPost, "/api/tenants", admin,
		`{"full_name": "Ana", "room_id": 1, "lease_start_date": "2026-01-01", "email": "ana@example.com", "fixed_water_charge": "25"}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, true, body["is_active"])

	code, body = do(t, srv, http.MethodPost, "/api/tenants", admin,
		`{"full_name": "Bad", "lease_start_date": "2026-02-01", "lease_end_date": "2026-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, body = do(t, srv, http.MethodPost, "/api/readings", admin,
		`{"tenant_id": 1, "reading_value": "100", "unit_price": "1.5", "reading_date": "2026-10-01"}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "150", body["amount"])
	assert.Equal(t, "2026-10-16", body["due_date"])

	code, body = do(t, srv, http.MethodGet, "/api/bills?tenant_id=1&unpaid=true&type=Electricity", admin, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, _ = do(t, srv, http.MethodGet, "/api/bills?type=Gas", admin, "")
	assert.Equal(t, http.StatusBadRequest, code)

	for _, bad := range []string{"-1", "0", "abc"} {
		code, body = do(t, srv, http.MethodGet, "/api/bills?tenant_id="+bad, admin, "")
		assert.Equal(t, http.StatusBadRequest, code, bad)
		assert.Equal(t, "Invalid tenant_id", body["error"])
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
