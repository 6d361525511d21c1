package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

type HTTPConfig struct {
	URL    string
	APIKey string // static bearer key, used when TokenURL is empty

	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	Timeout time.Duration
}

// HTTPGenerator posts a Request as JSON to an LLM gateway and reads an
// Output back.
type HTTPGenerator struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewHTTPGenerator(cfg HTTPConfig) *HTTPGenerator {
	g := &HTTPGenerator{url: cfg.URL}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		g.http = cc.Client(context.Background())
	} else {
		g.http = &http.Client{}
		g.apiKey = cfg.APIKey
	}
	if cfg.Timeout > 0 {
		g.http.Timeout = cfg.Timeout
	}
	return g
}

func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (Output, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Output{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Output{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	res, err := g.http.Do(httpReq)
	if err != nil {
		return Output{}, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Output{}, fmt.Errorf("generate: %s: %s", res.Status, strings.TrimSpace(string(msg)))
	}
	var out Output
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Output{}, fmt.Errorf("generate: decode: %w", err)
	}
	if out.TypeName == "" {
		return Output{}, fmt.Errorf("generate: response has no type_name")
	}
	return out, nil
}
