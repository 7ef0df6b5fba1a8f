package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestAuthProvider(t *testing.T) {
	resetViper(t)

	creds := filepath.Join(t.TempDir(), "credentials.json")
	body := `{"installed":{"client_id":"abc","client_secret":"shh","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(creds, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	viper.Set("credentials_file", creds)
	viper.Set("client_id", "azure-app")

	tests := []struct {
		source  string
		label   string
		wantErr string
	}{
		{source: "google", label: "Google Calendar"},
		{source: "outlook", label: "Outlook"},
		{source: "generator", wantErr: "does not need authentication"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			p, err := authProvider(tt.source)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("authProvider: %v", err)
			}
			if p.label != tt.label || p.config.RedirectURL != redirectURL {
				t.Errorf("provider = %q redirect %q", p.label, p.config.RedirectURL)
			}
			if u := p.config.AuthCodeURL("xyz", p.opts...); !strings.Contains(u, "state=xyz") {
				t.Errorf("auth URL missing state: %s", u)
			}
		})
	}
}

func TestAuthProvider_OutlookNeedsClientID(t *testing.T) {
	resetViper(t)
	if _, err := authProvider("outlook"); err == nil || !strings.Contains(err.Error(), "client_id") {
		t.Fatalf("err = %v", err)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		status   int
		wantCode string
		wantErr  bool
		silent   bool
	}{
		{name: "code", query: "state=s1&code=c1", status: http.StatusOK, wantCode: "c1"},
		{name: "denied", query: "state=s1&error=access_denied", status: http.StatusBadRequest, wantErr: true},
		{name: "wrong state", query: "state=other&code=c1", status: http.StatusBadRequest, silent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			rec := httptest.NewRecorder()
			callbackHandler("s1", results).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			select {
			case res := <-results:
				if tt.silent {
					t.Fatalf("unexpected result %+v", res)
				}
				if res.code != tt.wantCode || (res.err != nil) != tt.wantErr {
					t.Fatalf("result = %+v", res)
				}
			default:
				if !tt.silent {
					t.Fatal("no result delivered")
				}
			}
		})
	}
}

func TestCallbackHandler_RepeatedRedirectDoesNotBlock(t *testing.T) {
	results := make(chan callbackResult, 1)
	h := callbackHandler("s1", results)
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=c1", nil))
	}
	if res := <-results; res.code != "c1" {
		t.Fatalf("result = %+v", res)
	}
}
