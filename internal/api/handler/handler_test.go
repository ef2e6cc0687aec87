package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"church-scale/backend/internal/authz"
	"church-scale/backend/internal/dto"
	"church-scale/backend/internal/service"
	"church-scale/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.RegisterResponse
	registerErr    error
	loginResult    *dto.TokenResponse
	loginErr       error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	currentResult  *dto.UserResponse
	currentErr     error
	changePassErr  error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ string, _ time.Time) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	createResult   *dto.ScheduleResponse
	createErr      error
	getResult      *dto.ScheduleResponse
	getErr         error
	listResult     []dto.ScheduleResponse
	listTotal      int64
	listErr        error
	updateResult   *dto.ScheduleResponse
	updateErr      error
	deleteErr      error
	conflictResult *dto.ConflictResponse
	conflictErr    error
}

func (m *mockScheduleService) Create(_ context.Context, _ *authz.Context, _ *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockScheduleService) GetByID(_ context.Context, _ string) (*dto.ScheduleResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockScheduleService) List(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockScheduleService) ListMine(_ context.Context, _ *authz.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockScheduleService) Update(_ context.Context, _ *authz.Context, _ string, _ *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockScheduleService) Delete(_ context.Context, _ *authz.Context, _ string) error {
	return m.deleteErr
}
func (m *mockScheduleService) CheckConflict(_ context.Context, _ string, _ time.Time, _ string) (*dto.ConflictResponse, error) {
	return m.conflictResult, m.conflictErr
}

// ── Mock CheckinService ──

type mockCheckinService struct {
	checkinResult  *dto.CheckinResponse
	checkinErr     error
	todayResult    []dto.ScheduleResponse
	todayErr       error
	overviewResult []dto.CheckinOverviewItem
	overviewErr    error
}

func (m *mockCheckinService) Checkin(_ context.Context, _ *authz.Context, _ *dto.CheckinRequest) (*dto.CheckinResponse, error) {
	return m.checkinResult, m.checkinErr
}
func (m *mockCheckinService) GetMyToday(_ context.Context, _ *authz.Context) ([]dto.ScheduleResponse, error) {
	return m.todayResult, m.todayErr
}
func (m *mockCheckinService) DayOverview(_ context.Context, _ *authz.Context, _ *dto.CheckinDayRequest) ([]dto.CheckinOverviewItem, error) {
	return m.overviewResult, m.overviewErr
}

// ── Mock ExportService / CalendarService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportMonthlyAttendance(_ context.Context, _ string, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct {
	ics string
	err error
}

func (m *mockCalendarService) ExportUserFeed(_ context.Context, _ string) (string, error) {
	return m.ics, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
	c.Set("auth_context", &authz.Context{
		UserID:         "test-user-id",
		Role:           "admin",
		ApprovalStatus: "approved",
		EmailVerified:  true,
	})
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "ok@example.com",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_RejectedAccount(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrAccountRejected})

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "rejected@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Register_EmailConflict(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrEmailExists})

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "重复注册",
		Email:    "dup@example.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11004 {
		t.Errorf("expected error code 11004, got %d", resp.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_Create_Success(t *testing.T) {
	mock := &mockScheduleService{
		createResult: &dto.ScheduleResponse{ID: "sched-1", DutyDate: "2025-06-15"},
	}
	h := NewScheduleHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/schedules", jsonBody(dto.CreateScheduleRequest{
		MemberID:     "33333333-3333-3333-3333-333333333333",
		DepartmentID: "44444444-4444-4444-4444-444444444444",
		PositionID:   "55555555-5555-5555-5555-555555555555",
		DutyDate:     "2025-06-15",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/schedules", func(c *gin.Context) {
		setAuth(c)
		h.CreateSchedule(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestScheduleHandler_Create_ConflictNamesDepartment(t *testing.T) {
	mock := &mockScheduleService{
		createErr: &service.ConflictError{DepartmentID: "dept-1", DepartmentName: "接待部"},
	}
	h := NewScheduleHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/schedules", jsonBody(dto.CreateScheduleRequest{
		MemberID:     "33333333-3333-3333-3333-333333333333",
		DepartmentID: "44444444-4444-4444-4444-444444444444",
		PositionID:   "55555555-5555-5555-5555-555555555555",
		DutyDate:     "2025-06-15",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/schedules", func(c *gin.Context) {
		setAuth(c)
		h.CreateSchedule(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16002 {
		t.Errorf("expected error code 16002, got %d", resp.Code)
	}
	if resp.Message != "该成员当日已被部门「接待部」排班" {
		t.Errorf("unexpected conflict message: %s", resp.Message)
	}
}

func TestScheduleHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrScheduleNotFound, 404, 16001},
		{"NotManageable", service.ErrDeptNotManageable, 403, 10003},
		{"MemberNotFound", service.ErrMemberNotFound, 404, 13001},
		{"PositionNotFound", service.ErrPositionNotFound, 404, 15001},
		{"PositionMismatch", service.ErrPositionMismatch, 400, 16003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewScheduleHandler(&mockScheduleService{updateErr: tt.err})

			w := setupGin()
			req := httptest.NewRequest("PUT", "/schedules/sched-1", jsonBody(dto.UpdateScheduleRequest{}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.PUT("/schedules/:id", func(c *gin.Context) {
				setAuth(c)
				h.UpdateSchedule(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestScheduleHandler_CheckConflict_MissingParams(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/schedules/conflict-check?member_id=m-1", nil) // 缺 duty_date

	r := gin.New()
	r.GET("/schedules/conflict-check", h.CheckConflict)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CheckinHandler Tests
// ═══════════════════════════════════════════════════════════

func checkinPayload() io.Reader {
	return jsonBody(dto.CheckinRequest{
		ScheduleID: "66666666-6666-6666-6666-666666666666",
		Latitude:   -23.5505,
		Longitude:  -46.6333,
	})
}

func TestCheckinHandler_Success(t *testing.T) {
	mock := &mockCheckinService{
		checkinResult: &dto.CheckinResponse{
			ID:     "checkin-1",
			Status: "on_time",
		},
	}
	h := NewCheckinHandler(mock)

	w := setupGin()
	req := httptest.NewRequest("POST", "/checkins", checkinPayload())
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkins", func(c *gin.Context) {
		setAuth(c)
		h.Checkin(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// 围栏与窗口的拒绝原因映射到不同错误码
func TestCheckinHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"ScheduleNotFound", service.ErrScheduleNotFound, 404, 16001},
		{"NotOwn", service.ErrScheduleNotOwn, 403, 17004},
		{"NoMemberLinked", service.ErrNoMemberLinked, 400, 17005},
		{"NotDutyDay", service.ErrNotDutyDay, 400, 17006},
		{"OutsideFence", service.ErrOutsideFence, 400, 17003},
		{"WindowClosed", service.ErrCheckinWindowClosed, 400, 17002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckinHandler(&mockCheckinService{checkinErr: tt.err})

			w := setupGin()
			req := httptest.NewRequest("POST", "/checkins", checkinPayload())
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/checkins", func(c *gin.Context) {
				setAuth(c)
				h.Checkin(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCheckinHandler_Overview_BadQuery(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/checkins/overview?date=2025-06-01", nil) // 缺 department_id

	r := gin.New()
	r.GET("/checkins/overview", func(c *gin.Context) {
		setAuth(c)
		h.DayOverview(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Attendance_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "出勤表_2025-06.xlsx",
	}
	h := NewExportHandler(mock, &mockCalendarService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/attendance?month=2025-06", nil)

	r := gin.New()
	r.GET("/export/attendance", h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_Attendance_MissingMonth(t *testing.T) {
	h := NewExportHandler(&mockExportService{}, &mockCalendarService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/attendance", nil)

	r := gin.New()
	r.GET("/export/attendance", h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Attendance_NoSchedules(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoSchedules}, &mockCalendarService{})

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/attendance?month=2025-06", nil)

	r := gin.New()
	r.GET("/export/attendance", h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 19001 {
		t.Errorf("expected error code 19001, got %d", resp.Code)
	}
}

func TestExportHandler_CalendarFeed(t *testing.T) {
	h := NewExportHandler(&mockExportService{}, &mockCalendarService{
		ics: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
	})

	w := setupGin()
	req := httptest.NewRequest("GET", "/export/calendar.ics", nil)

	r := gin.New()
	r.GET("/export/calendar.ics", func(c *gin.Context) {
		setAuth(c)
		h.CalendarFeed(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
}
