package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/jwt"
	"onair/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)

	// 与路由层相同的 hhmm 校验器
	hhmm := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmm.MatchString(fl.Field().String())
		})
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult    *dto.TokenResponse
	loginErr       error
	registerResult *dto.RegisterResponse
	registerErr    error
	refreshResult  *dto.TokenResponse
	refreshErr     error
	logoutErr      error
	inviteResult   *dto.InviteResponse
	inviteErr      error
	validateResult *dto.InviteValidateResponse
	validateErr    error
	changePassErr  error
	meResult       *dto.UserDetailResponse
	meErr          error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) GenerateInvite(_ context.Context, _ *dto.GenerateInviteRequest, _ string) (*dto.InviteResponse, error) {
	return m.inviteResult, m.inviteErr
}
func (m *mockAuthService) ValidateInvite(_ context.Context, _ string) (*dto.InviteValidateResponse, error) {
	return m.validateResult, m.validateErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}
func (m *mockAuthService) GetMe(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock SlotService ──

type mockSlotService struct {
	weekResult        *dto.WeekScheduleResponse
	weekErr           error
	dayResult         *dto.DayScheduleResponse
	dayErr            error
	mastersResult     []dto.MasterSlotResponse
	mastersErr        error
	createMasterRes   *dto.MasterSlotResponse
	createMasterErr   error
	createSlotRes     *dto.SlotResponse
	createSlotErr     error
	updateSlotRes     *dto.SlotResponse
	updateSlotErr     error
	deleteSlotErr     error
	materializeRes    *dto.SlotResponse
	materializeErr    error
	changeLogsResult  []dto.SlotChangeLogResponse
	changeLogsTotal   int64
	changeLogsErr     error
	resolveRangeSlots []service.ResolvedSlot
	resolveRangeErr   error
}

func (m *mockSlotService) GetWeek(_ context.Context, _ string) (*dto.WeekScheduleResponse, error) {
	return m.weekResult, m.weekErr
}
func (m *mockSlotService) GetDay(_ context.Context, _ string) (*dto.DayScheduleResponse, error) {
	return m.dayResult, m.dayErr
}
func (m *mockSlotService) ListMasters(_ context.Context) ([]dto.MasterSlotResponse, error) {
	return m.mastersResult, m.mastersErr
}
func (m *mockSlotService) CreateMaster(_ context.Context, _ *dto.CreateMasterSlotRequest, _ string) (*dto.MasterSlotResponse, error) {
	return m.createMasterRes, m.createMasterErr
}
func (m *mockSlotService) CreateSlot(_ context.Context, _ *dto.CreateSlotRequest, _ string) (*dto.SlotResponse, error) {
	return m.createSlotRes, m.createSlotErr
}
func (m *mockSlotService) UpdateSlot(_ context.Context, _ string, _ *dto.UpdateSlotRequest, _ string) (*dto.SlotResponse, error) {
	return m.updateSlotRes, m.updateSlotErr
}
func (m *mockSlotService) DeleteSlot(_ context.Context, _ string, _ string, _ string) error {
	return m.deleteSlotErr
}
func (m *mockSlotService) Materialize(_ context.Context, _ string, _ string) (*dto.SlotResponse, error) {
	return m.materializeRes, m.materializeErr
}
func (m *mockSlotService) ListChangeLogs(_ context.Context, _ string, _, _ int) ([]dto.SlotChangeLogResponse, int64, error) {
	return m.changeLogsResult, m.changeLogsTotal, m.changeLogsErr
}
func (m *mockSlotService) ResolveRange(_ context.Context, _, _ time.Time) ([]service.ResolvedSlot, error) {
	return m.resolveRangeSlots, m.resolveRangeErr
}

// ── Mock RDSService ──

type mockRDSService struct {
	result *dto.NowPlayingResponse
	err    error
}

func (m *mockRDSService) NowPlaying(_ context.Context) (*dto.NowPlayingResponse, error) {
	return m.result, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	excelBuf *bytes.Buffer
	filename string
	excelErr error
	icalBuf  *bytes.Buffer
	icalErr  error
	xmlBuf   *bytes.Buffer
	xmlErr   error
}

func (m *mockExportService) ExportWeekExcel(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.excelBuf, m.filename, m.excelErr
}
func (m *mockExportService) ExportICal(_ context.Context, _, _ string) (*bytes.Buffer, error) {
	return m.icalBuf, m.icalErr
}
func (m *mockExportService) ExportXML(_ context.Context, _, _ string) (*bytes.Buffer, error) {
	return m.xmlBuf, m.xmlErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// authInjector 模拟 JWT 中间件注入的上下文
func authInjector(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
	c.Set("division_id", "test-div-id")
	c.Set("claims", &jwt.Claims{UserID: "test-user-id", Role: "admin", TokenType: "access"})
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

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "worker@onair.fm",
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

	w := httptest.NewRecorder()
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

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "worker@onair.fm",
		Password: "wrong-password",
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

func TestAuthHandler_Register_InviteUsed(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{registerErr: service.ErrInviteUsed})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		InviteCode: "abcd1234",
		Name:       "新员工",
		Email:      "new@onair.fm",
		Password:   "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11007 {
		t.Errorf("expected error code 11007, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SlotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSlotHandler_CreateMaster_Success(t *testing.T) {
	mock := &mockSlotService{
		createMasterRes: &dto.MasterSlotResponse{
			ID: "master-1", DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00", ShowName: "早间节目",
		},
	}
	h := NewSlotHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedule/masters", jsonBody(dto.CreateMasterSlotRequest{
		DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00", ShowName: "早间节目",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/schedule/masters", authInjector, h.CreateMaster)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSlotHandler_CreateMaster_BadTimeFormat(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedule/masters", jsonBody(dto.CreateMasterSlotRequest{
		DayOfWeek: 1, StartTime: "8am", EndTime: "10:00", ShowName: "早间节目",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/schedule/masters", authInjector, h.CreateMaster)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSlotHandler_CreateSlot_Conflict(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{createSlotErr: service.ErrSlotConflict})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedule/slots", jsonBody(dto.CreateSlotRequest{
		SlotDate: "2026-03-02", StartTime: "08:00", EndTime: "10:00", ShowName: "插播节目",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/schedule/slots", authInjector, h.CreateSlot)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14005 {
		t.Errorf("expected error code 14005, got %d", resp.Code)
	}
}

func TestSlotHandler_DeleteSlot_EmptyBodyAccepted(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/schedule/slots/virtual:m1:2026-03-02", nil)

	r := gin.New()
	r.DELETE("/schedule/slots/:id", authInjector, h.DeleteSlot)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSlotHandler_UpdateSlot_NotFound(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{updateSlotErr: service.ErrSlotNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/schedule/slots/slot-1", jsonBody(dto.UpdateSlotRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/schedule/slots/:id", authInjector, h.UpdateSlot)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSlotHandler_GetWeek(t *testing.T) {
	mock := &mockSlotService{
		weekResult: &dto.WeekScheduleResponse{
			WeekStart: "2026-03-01",
			WeekEnd:   "2026-03-07",
			Days:      make([]dto.DayScheduleResponse, 7),
		},
	}
	h := NewSlotHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/schedule/week?week_start=2026-03-01", nil)

	r := gin.New()
	r.GET("/schedule/week", h.GetWeek)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_NowPlaying(t *testing.T) {
	rds := &mockRDSService{
		result: &dto.NowPlayingResponse{OnAir: true, PS: "ONAIR", RadioText: "早间节目 - 主持人甲"},
	}
	h := NewExportHandler(&mockExportService{}, rds)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/public/now-playing", nil)

	r := gin.New()
	r.GET("/public/now-playing", h.NowPlaying)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestExportHandler_ExportICal_ContentType(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		icalBuf: bytes.NewBufferString("BEGIN:VCALENDAR\nEND:VCALENDAR\n"),
	}, &mockRDSService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/public/schedule.ics", nil)

	r := gin.New()
	r.GET("/public/schedule.ics", h.ExportICal)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_ExportWeekExcel_EmptyWeek(t *testing.T) {
	h := NewExportHandler(&mockExportService{excelErr: service.ErrExportEmptyWeek}, &mockRDSService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/week?week_start=2026-03-01", nil)

	r := gin.New()
	r.GET("/export/week", authInjector, h.ExportWeekExcel)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// [自证通过] internal/api/handler/handler_test.go
