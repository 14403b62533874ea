package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteverify(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "secret", r.PostForm.Get("secret"))
		assert.Equal(t, "tok", r.PostForm.Get("response"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestRecaptchaVerify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		hostnames []string
		rejected  bool
		wantErr   bool
	}{
		{"accepted", http.StatusOK, `{"success":true,"hostname":"bengal.test"}`, nil, false, false},
		{"accepted on allowed host", http.StatusOK, `{"success":true,"hostname":"Bengal.test"}`, []string{"bengal.test"}, false, false},
		{"solved elsewhere", http.StatusOK, `{"success":true,"hostname":"evil.test"}`, []string{"bengal.test"}, true, true},
		{"refused token", http.StatusOK, `{"success":false,"error-codes":["timeout-or-duplicate"]}`, nil, true, true},
		{"bad secret", http.StatusOK, `{"success":false,"error-codes":["invalid-input-secret"]}`, nil, false, true},
		{"siteverify down", http.StatusServiceUnavailable, ``, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newSiteverify(t, tt.status, tt.body)
			v := NewRecaptchaVerifier("secret", tt.hostnames...)
			v.endpoint = srv.URL

			err := v.Verify(context.Background(), " tok ", "10.0.0.1")
			assert.Equal(t, 1, *calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrCaptchaRejected))
		})
	}
}

func TestRecaptchaEmptyTokenSkipsCall(t *testing.T) {
	srv, calls := newSiteverify(t, http.StatusOK, `{"success":true}`)
	v := NewRecaptchaVerifier("secret")
	v.endpoint = srv.URL

	err := v.Verify(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrCaptchaRejected)
	assert.Zero(t, *calls)
}
