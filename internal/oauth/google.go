// Package oauth verifies Google ID tokens against the token-info endpoint.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/service"
)

// DefaultTokenInfoURL is Google's public token-info endpoint.
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var ErrRejected = errors.New("oauth: credential rejected")

// Google implements service.IdentityVerifier.
type Google struct {
	endpoint string
	audience string
	http     *http.Client
	log      *zap.Logger
}

// NewGoogle returns a verifier calling endpoint.  When audience is set the
// token's aud claim must match it.
func NewGoogle(endpoint, audience string, log *zap.Logger) *Google {
	if endpoint == "" {
		endpoint = DefaultTokenInfoURL
	}
	return &Google{
		endpoint: endpoint,
		audience: audience,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// tokenInfo mirrors the endpoint's response.  Google reports booleans as
// strings, so email_verified is decoded loosely.
type tokenInfo struct {
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Audience      string          `json:"aud"`
	EmailVerified json.RawMessage `json:"email_verified"`
	Error         string          `json:"error_description"`
}

func (t tokenInfo) verified() bool {
	v := strings.Trim(strings.TrimSpace(string(t.EmailVerified)), `"`)
	return strings.EqualFold(v, "true")
}

func (g *Google) VerifyCredential(ctx context.Context, credential string) (service.Identity, error) {
	u := g.endpoint + "?id_token=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return service.Identity{}, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return service.Identity{}, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return service.Identity{}, fmt.Errorf("tokeninfo read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.log.Debug("tokeninfo rejected credential", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return service.Identity{}, ErrRejected
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return service.Identity{}, fmt.Errorf("tokeninfo decode: %w", err)
	}
	if g.audience != "" && info.Audience != g.audience {
		return service.Identity{}, fmt.Errorf("%w: audience mismatch", ErrRejected)
	}
	return service.Identity{
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: info.verified(),
	}, nil
}
