package httputil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr only", "192.168.1.10:54321", "", "", "192.168.1.10"},
		{"remote addr without port", "192.168.1.10", "", "", "192.168.1.10"},
		{"x-real-ip wins over remote addr", "10.0.0.1:80", "", "203.0.113.5", "203.0.113.5"},
		{"x-forwarded-for wins over x-real-ip", "10.0.0.1:80", "203.0.113.9", "203.0.113.5", "203.0.113.9"},
		{"x-forwarded-for chain uses first entry", "10.0.0.1:80", "203.0.113.9, 10.0.0.2, 10.0.0.3", "", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/status", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
