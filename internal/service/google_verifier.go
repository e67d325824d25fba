package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

// GoogleIdentity is the subset of tokeninfo claims used for sign-in.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type tokenInfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Error         string `json:"error_description"`
}

// GoogleTokenVerifier checks ID tokens against Google's tokeninfo endpoint.
type GoogleTokenVerifier struct {
	clientID string
	endpoint string
	http     *http.Client
}

// NewGoogleTokenVerifier returns nil when no client ID is configured.
func NewGoogleTokenVerifier(clientID, endpoint string, client *http.Client) *GoogleTokenVerifier {
	if clientID == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleTokenVerifier{clientID: clientID, endpoint: endpoint, http: client}
}

// Verify validates idToken and returns the identity it asserts.
func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if v == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "google sign-in is not configured")
	}
	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build tokeninfo request")
	}

	resp, err := v.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "google tokeninfo unreachable")
	}
	defer resp.Body.Close()

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid tokeninfo response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Wrap(fmt.Errorf("tokeninfo status %d: %s", resp.StatusCode, info.Error), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid google token")
	}
	if info.Aud != v.clientID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "google token issued for another client")
	}
	if info.EmailVerified != "true" || info.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "google email is not verified")
	}
	return &GoogleIdentity{Subject: info.Sub, Email: info.Email, Name: info.Name}, nil
}
