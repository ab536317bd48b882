package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"repo-autobot/pkg/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Resp {
	t.Helper()
	var resp response.Resp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	return resp
}

func TestOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	response.OK(c, map[string]string{"foo": "bar"})

	if w.Code != http.StatusOK {
		t.Errorf("expected %d but got %d", http.StatusOK, w.Code)
	}
	resp := decode(t, w)
	if resp.ErrorCode != 0 || resp.Message != response.MessageSuccess {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["foo"] != "bar" {
		t.Errorf("unexpected data payload: %v", resp.Data)
	}
}

func TestErrorStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		write    func(c *gin.Context)
		wantCode int
		wantErr  int
		wantMsg  string
	}{
		{
			name:     "bad request",
			write:    func(c *gin.Context) { response.Error(c, errors.New("payload too large")) },
			wantCode: http.StatusBadRequest,
			wantErr:  response.ErrorCodeBadRequest,
			wantMsg:  "payload too large",
		},
		{
			name:     "unauthorized",
			write:    response.Unauthorized,
			wantCode: http.StatusUnauthorized,
			wantErr:  http.StatusUnauthorized,
			wantMsg:  "Unauthorized",
		},
		{
			name:     "forbidden",
			write:    response.Forbidden,
			wantCode: http.StatusForbidden,
			wantErr:  http.StatusForbidden,
			wantMsg:  "Forbidden",
		},
		{
			name:     "too many requests",
			write:    response.TooManyRequests,
			wantCode: http.StatusTooManyRequests,
			wantErr:  http.StatusTooManyRequests,
			wantMsg:  "Too many requests",
		},
		{
			name:     "service unavailable",
			write:    func(c *gin.Context) { response.ServiceUnavailable(c, errors.New("shutting down")) },
			wantCode: http.StatusServiceUnavailable,
			wantErr:  http.StatusServiceUnavailable,
			wantMsg:  "shutting down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.write(c)

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
			resp := decode(t, w)
			if resp.ErrorCode != tt.wantErr || resp.Message != tt.wantMsg {
				t.Errorf("unexpected envelope: %+v", resp)
			}
			if resp.Data != nil {
				t.Errorf("error bodies carry no data, got %v", resp.Data)
			}
		})
	}
}
