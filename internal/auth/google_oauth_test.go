package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGoogleOAuthProvider_GetLoginURL(t *testing.T) {
	p := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:    "client-123",
		RedirectURL: "http://localhost:8080/auth/google/callback",
	})

	loginURL := p.GetLoginURL("state-abc")

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("scope = %q, should contain email", q.Get("scope"))
	}
}

func TestGoogleOAuthProvider_ExchangeToken_Success(t *testing.T) {
	var gotGrantType, gotCode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		gotGrantType = r.PostFormValue("grant_type")
		gotCode = r.PostFormValue("code")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-xyz","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{
		ClientID:     "client-123",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/cb",
		TokenURL:     server.URL,
	})

	accessToken, err := p.ExchangeToken(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeToken: %v", err)
	}
	if accessToken != "at-xyz" {
		t.Errorf("accessToken = %q", accessToken)
	}
	if gotGrantType != "authorization_code" {
		t.Errorf("grant_type = %q", gotGrantType)
	}
	if gotCode != "auth-code" {
		t.Errorf("code = %q", gotCode)
	}
}

func TestGoogleOAuthProvider_ExchangeToken_RejectedByGoogle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{TokenURL: server.URL})

	_, err := p.ExchangeToken(context.Background(), "expired-code")
	if !errors.Is(err, ErrTokenExchange) {
		t.Errorf("err = %v, want ErrTokenExchange", err)
	}
}

func TestGoogleOAuthProvider_ExchangeToken_EmptyAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":""}`))
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{TokenURL: server.URL})

	_, err := p.ExchangeToken(context.Background(), "code")
	if !errors.Is(err, ErrTokenExchange) {
		t.Errorf("err = %v, want ErrTokenExchange", err)
	}
}

func TestGoogleOAuthProvider_FetchProfile_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sub": "108123",
			"email": "user@example.com",
			"email_verified": true,
			"name": "Taro Yamada",
			"given_name": "Taro",
			"picture": "https://example.com/p.png"
		}`))
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{UserInfoURL: server.URL})

	profile, err := p.FetchProfile(context.Background(), "at-xyz")
	if err != nil {
		t.Fatalf("FetchProfile: %v", err)
	}
	if gotAuth != "Bearer at-xyz" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if profile.Sub != "108123" {
		t.Errorf("Sub = %q", profile.Sub)
	}
	if !profile.VerifiedEmail {
		t.Error("VerifiedEmail = false, want true")
	}
	if profile.GivenName != "Taro" {
		t.Errorf("GivenName = %q", profile.GivenName)
	}
}

func TestGoogleOAuthProvider_FetchProfile_RejectedByGoogle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{UserInfoURL: server.URL})

	_, err := p.FetchProfile(context.Background(), "revoked-token")
	if !errors.Is(err, ErrUserInfoFetch) {
		t.Errorf("err = %v, want ErrUserInfoFetch", err)
	}
}

func TestGoogleOAuthProvider_FetchProfile_EmptySub(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"user@example.com"}`))
	}))
	defer server.Close()

	p := NewGoogleOAuthProvider(GoogleOAuthConfig{UserInfoURL: server.URL})

	_, err := p.FetchProfile(context.Background(), "at")
	if !errors.Is(err, ErrUserInfoFetch) {
		t.Errorf("err = %v, want ErrUserInfoFetch", err)
	}
}
