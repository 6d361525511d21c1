package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func gatewayHandler(t *testing.T, wantAuth string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q want %q", got, wantAuth)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Prompt != "volcans" || len(req.AllowedTypes) != 1 || req.AllowedTypes[0].Name != "QCM" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type_name":"QCM","question":"Q","metadata":{"propositions":["a"]},"hints":["x"]}`))
	}
}

func TestHTTPGeneratorStaticKey(t *testing.T) {
	srv := httptest.NewServer(gatewayHandler(t, "Bearer secret"))
	defer srv.Close()

	g := NewHTTPGenerator(HTTPConfig{URL: srv.URL, APIKey: "secret"})
	out, err := g.Generate(context.Background(), Request{Prompt: "volcans", AllowedTypes: []TypeSpec{{ID: "1", Name: "QCM"}}})
	if err != nil {
		t.Fatal(err)
	}
	if out.TypeName != "QCM" || out.Question != "Q" || !strings.Contains(string(out.Metadata), "propositions") {
		t.Errorf("out = %+v", out)
	}
}

func TestHTTPGeneratorClientCredentials(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokens.Close()
	srv := httptest.NewServer(gatewayHandler(t, "Bearer tok-1"))
	defer srv.Close()

	g := NewHTTPGenerator(HTTPConfig{URL: srv.URL, APIKey: "ignored", TokenURL: tokens.URL, ClientID: "id", ClientSecret: "s"})
	if _, err := g.Generate(context.Background(), Request{Prompt: "volcans", AllowedTypes: []TypeSpec{{Name: "QCM"}}}); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPGeneratorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"question":"no type"}`))
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPGenerator(HTTPConfig{URL: srv.URL}).Generate(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("status error = %v", err)
	}
	_, err = NewHTTPGenerator(HTTPConfig{URL: srv.URL + "/empty"}).Generate(context.Background(), Request{})
	if err == nil {
		t.Error("missing type_name should fail")
	}
}
