package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/calendar"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakePayrollService struct {
	mu         sync.Mutex
	lastReq    payroll.GeneratePayrollRequest
	lastFilter payroll.PayrollFilter
	err        error
}

func (f *fakePayrollService) Preview(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PreviewPayrollResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.err != nil {
		return payroll.PreviewPayrollResponse{}, f.err
	}
	return payroll.PreviewPayrollResponse{Period: "February 2024"}, nil
}

func (f *fakePayrollService) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.err != nil {
		return payroll.GeneratePayrollResponse{}, f.err
	}
	return payroll.GeneratePayrollResponse{
		BatchID:        "batch-1",
		Period:         "February 2024",
		SucceededCount: 1,
		Succeeded: []payroll.PayrollRecordResponse{{
			EmployeeID: req.EmployeeIDs[0],
			NetSalary:  decimal.NewFromInt(43248),
		}},
	}, nil
}

func (f *fakePayrollService) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	if id != "rec-1" {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}
	return payroll.PayrollRecordResponse{ID: "rec-1", EmployeeID: "emp-a", Period: "February 2024"}, nil
}

func (f *fakePayrollService) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	filter.Normalize()
	return payroll.ListPayrollRecordResponse{
		Data:       []payroll.PayrollRecordResponse{{ID: "rec-1"}},
		TotalCount: 45,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

type fakeNotificationService struct {
	events chan notification.SSEEvent
	subs   chan string
}

func newFakeNotificationService() *fakeNotificationService {
	return &fakeNotificationService{
		events: make(chan notification.SSEEvent, 1),
		subs:   make(chan string, 1),
	}
}

func (f *fakeNotificationService) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	return nil
}

func (f *fakeNotificationService) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	f.subs <- recipientID
	return f.events, func() {}
}

func (f *fakeNotificationService) Stop() {}

type routerHarness struct {
	router  *chi.Mux
	jwt     jwt.Service
	payroll *fakePayrollService
	notif   *fakeNotificationService
}

func newRouterHarness() *routerHarness {
	h := &routerHarness{
		jwt:     jwt.NewJWTService(handlerTestSecret),
		payroll: &fakePayrollService{},
		notif:   newFakeNotificationService(),
	}
	h.router = NewRouter(RouterConfig{Env: "test", Version: "test"}, h.jwt, NewPayrollHandler(h.payroll), NewNotificationHandler(h.notif, h.jwt))
	return h
}

func (h *routerHarness) token(t *testing.T, userID string, role auth.Role) string {
	t.Helper()
	token, _, err := h.jwt.GenerateAccessToken(userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func (h *routerHarness) do(t *testing.T, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

const generateBody = `{"period_month":2,"period_year":2024,"employee_ids":["emp-a"]}`

func TestHealthz(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGeneratePayroll_RequiresToken(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", "", generateBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGeneratePayroll_RejectsSSEToken(t *testing.T) {
	h := newRouterHarness()
	token, _, err := h.jwt.GenerateSSEToken("user-1")
	require.NoError(t, err)

	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", token, generateBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGeneratePayroll_RequiresManager(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "user-1", auth.RoleEmployee), generateBody)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGeneratePayroll_Created(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "manager-1", auth.RoleManager), generateBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	var resp payroll.GeneratePayrollResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "batch-1", resp.BatchID)
	require.Len(t, resp.Succeeded, 1)
	assert.True(t, decimal.NewFromInt(43248).Equal(resp.Succeeded[0].NetSalary))

	assert.Equal(t, "manager-1", h.payroll.lastReq.GeneratedBy)
	assert.Equal(t, []string{"emp-a"}, h.payroll.lastReq.EmployeeIDs)
}

func TestGeneratePayroll_ActorComesFromToken(t *testing.T) {
	h := newRouterHarness()
	body := `{"period_month":2,"period_year":2024,"employee_ids":["emp-a"],"generated_by":"someone-else"}`
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "owner-1", auth.RoleOwner), body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "owner-1", h.payroll.lastReq.GeneratedBy)
}

func TestGeneratePayroll_BadBody(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "manager-1", auth.RoleManager), "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePayroll_ErrorMapping(t *testing.T) {
	var verrs validator.ValidationErrors
	verrs.Add("period_month", "must be between 1 and 12")

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", verrs, http.StatusUnprocessableEntity},
		{"no employees", payroll.ErrNoEmployeesSelected, http.StatusBadRequest},
		{"invalid period", calendar.ErrInvalidPeriod, http.StatusBadRequest},
		{"missing actor", payroll.ErrMissingActor, http.StatusBadRequest},
		{"conflict", payroll.ErrPayrollRecordAlreadyExists, http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newRouterHarness()
			h.payroll.err = c.err
			w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "manager-1", auth.RoleManager), generateBody)
			assert.Equal(t, c.code, w.Code)
			assert.False(t, decodeEnvelope(t, w).Success)
		})
	}
}

func TestGeneratePayroll_ValidationDetails(t *testing.T) {
	var verrs validator.ValidationErrors
	verrs.Add("period_month", "must be between 1 and 12")

	h := newRouterHarness()
	h.payroll.err = verrs
	w := h.do(t, http.MethodPost, "/api/v1/payroll/generate", h.token(t, "manager-1", auth.RoleManager), generateBody)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "period_month")
}

func TestPreview(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodPost, "/api/v1/payroll/preview", h.token(t, "manager-1", auth.RoleManager), generateBody)
	require.Equal(t, http.StatusOK, w.Code)

	var resp payroll.PreviewPayrollResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, "February 2024", resp.Period)
}

func TestGetPayrollRecord(t *testing.T) {
	h := newRouterHarness()
	token := h.token(t, "manager-1", auth.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/payroll/records/rec-1", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/payroll/records/missing", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPayrollRecords(t *testing.T) {
	h := newRouterHarness()
	token := h.token(t, "manager-1", auth.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/payroll/records?period=February+2024&employee_id=emp-a&page=2&limit=20", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	filter := h.payroll.lastFilter
	require.NotNil(t, filter.Period)
	assert.Equal(t, calendar.Period{Month: time.February, Year: 2024}, *filter.Period)
	require.NotNil(t, filter.EmployeeID)
	assert.Equal(t, "emp-a", *filter.EmployeeID)
	assert.Equal(t, 2, filter.Page)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(45), env.Meta.TotalItems)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestListPayrollRecords_NumericPeriod(t *testing.T) {
	h := newRouterHarness()
	token := h.token(t, "manager-1", auth.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/payroll/records?period_month=3&period_year=2025", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, h.payroll.lastFilter.Period)
	assert.Equal(t, "March 2025", h.payroll.lastFilter.Period.String())
}

func TestListPayrollRecords_InvalidPeriod(t *testing.T) {
	h := newRouterHarness()
	token := h.token(t, "manager-1", auth.RoleManager)

	w := h.do(t, http.MethodGet, "/api/v1/payroll/records?period=Smarch+2025", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/payroll/records?period_month=13&period_year=2025", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSSEToken(t *testing.T) {
	h := newRouterHarness()
	w := h.do(t, http.MethodGet, "/api/v1/notifications/sse-token", h.token(t, "user-1", auth.RoleEmployee), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SSETokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	userID, err := h.jwt.ValidateSSEToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestStream_RejectsMissingOrInvalidToken(t *testing.T) {
	h := newRouterHarness()

	w := h.do(t, http.MethodGet, "/api/v1/notifications/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+h.token(t, "user-1", auth.RoleManager), "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStream_DeliversEvents(t *testing.T) {
	h := newRouterHarness()
	srv := httptest.NewServer(h.router)
	defer srv.Close()

	token, _, err := h.jwt.GenerateSSEToken("user-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/notifications/stream?token="+token, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	assert.Equal(t, "user-1", <-h.notif.subs)
	h.notif.events <- notification.SSEEvent{
		Event: "notification",
		Data:  notification.NotificationResponse{ID: "n-1", Type: notification.TypePayrollGenerated, Title: "Payroll generated"},
	}

	reader := bufio.NewReader(resp.Body)
	var got bytes.Buffer
	for !strings.Contains(got.String(), "event: notification") {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		got.WriteString(line)
	}
	line, err := reader.ReadString('\n')
	require.NoError(t, err)

	assert.Contains(t, got.String(), "event: connected")
	assert.Contains(t, line, `"id":"n-1"`)
}
