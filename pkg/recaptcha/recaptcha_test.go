package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_Disabled(t *testing.T) {
	v := NewVerifier("", nil)
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), ""))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		token   string
		wantErr bool
	}{
		{name: "success", body: `{"success": true}`, token: "token-123", wantErr: false},
		{name: "rejected", body: `{"success": false, "error-codes": ["invalid-input-response"]}`, token: "token-123", wantErr: true},
		{name: "malformed reply", body: `not-json`, token: "token-123", wantErr: true},
		{name: "empty token", body: `{"success": true}`, token: " ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "secret", r.PostForm.Get("secret"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := NewVerifier("secret", httpclient.NewStandardClient(time.Second)).WithVerifyURL(srv.URL)
			err := v.Verify(context.Background(), tt.token)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}
