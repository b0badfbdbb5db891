package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"accountbook/internal/auth"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/service"
	"accountbook/internal/trend"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func newTestEcho(exposeInternal bool) *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	e.HTTPErrorHandler = HTTPErrorHandler(exposeInternal, applog.Nop())
	return e
}

func doRequest(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) VerifyToken(ctx context.Context, claims *auth.Claims, userID uint) error {
	args := m.Called(ctx, claims, userID)
	return args.Error(0)
}

// MockCategoryService is a mock implementation of service.CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, typ string) ([]model.Category, error) {
	args := m.Called(ctx, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) Import(ctx context.Context, categories []model.Category) error {
	args := m.Called(ctx, categories)
	return args.Error(0)
}

// MockTransactionService is a mock implementation of service.TransactionService.
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Add(ctx context.Context, userID uint, in service.TransactionInput) (uint, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTransactionService) Update(ctx context.Context, userID, id uint, in service.TransactionInput) error {
	args := m.Called(ctx, userID, id, in)
	return args.Error(0)
}

func (m *MockTransactionService) Delete(ctx context.Context, userID, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTransactionService) List(ctx context.Context, userID uint, q service.ListQuery) ([]model.TransactionDetail, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TransactionDetail), args.Error(1)
}

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Totals(ctx context.Context, userID uint, startDate, endDate string) (*service.Totals, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Totals), args.Error(1)
}

func (m *MockStatsService) CategoryBreakdown(ctx context.Context, userID uint, startDate, endDate string) (*service.CategoryBreakdown, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CategoryBreakdown), args.Error(1)
}

func (m *MockStatsService) Trend(ctx context.Context, userID uint, startDate, endDate string) (*trend.Series, error) {
	args := m.Called(ctx, userID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trend.Series), args.Error(1)
}

// MockExportService mocks Prepare and renders with the real writers.
type MockExportService struct {
	mock.Mock
	renderer service.ExportService
}

func newMockExportService() *MockExportService {
	return &MockExportService{renderer: service.NewExportService(nil, "", applog.Nop())}
}

func (m *MockExportService) Prepare(ctx context.Context, userID uint, q service.ListQuery) (*service.Export, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Export), args.Error(1)
}

func (m *MockExportService) WriteCSV(w io.Writer, export *service.Export) error {
	return m.renderer.WriteCSV(w, export)
}

func (m *MockExportService) WritePDF(w io.Writer, export *service.Export) error {
	return m.renderer.WritePDF(w, export)
}

func httptestRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
