package handlers

import (
	"context"
	"net/http"

	"weather_station/internal/models"
	"weather_station/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	resp    models.ControlDirective
	err     error
	lastRaw map[string]any
	calls   int
}

func (m *mockControl) SubmitDirective(ctx context.Context, raw map[string]any) (models.ControlDirective, error) {
	m.calls++
	m.lastRaw = raw
	return m.resp, m.err
}

type mockMonitoring struct {
	status  service.StationStatus
	err     error
	updates chan service.StationStatus
	watched chan struct{}
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (service.StationStatus, error) {
	return m.status, m.err
}

// Watch hands out the updates channel; a nil channel never delivers.
func (m *mockMonitoring) Watch(ctx context.Context) <-chan service.StationStatus {
	if m.watched != nil {
		close(m.watched)
	}
	return m.updates
}

type mockEventLog struct {
	resp  []models.StationEvent
	err   error
	last  service.LogFilter
	calls int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.StationEvent, error) {
	m.calls++
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
