package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingStatusRecorder は記録されたステータスコードを保持するモック。
type recordingStatusRecorder struct {
	Statuses []int
}

func (m *recordingStatusRecorder) RecordHTTPStatus(statusCode int) {
	m.Statuses = append(m.Statuses, statusCode)
}

// TestMetricsMiddleware_RecordsStatus はレスポンスのステータスコードが
// 記録されることを検証する。
func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"200", http.StatusOK},
		{"404", http.StatusNotFound},
		{"500", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &recordingStatusRecorder{}
			mw := NewMetricsMiddleware(recorder)
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if len(recorder.Statuses) != 1 || recorder.Statuses[0] != tt.statusCode {
				t.Errorf("recorded statuses = %v, want [%d]", recorder.Statuses, tt.statusCode)
			}
		})
	}
}
