// Package auth signs users in through Steam OpenID 2.0 and tracks their
// sessions in the shared cache.
package auth

import (
	"bufio"
	"bytes"
	"context"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/steamid"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	openIDNamespace  = "http://specs.openid.net/auth/2.0"
	identifierSelect = "http://specs.openid.net/auth/2.0/identifier_select"
)

var (
	ErrAssertionInvalid = errors.New("auth: invalid openid assertion")

	claimedIDRe = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d{17})$`)
)

type OpenID struct {
	endpoint string
	returnTo string
	realm    string
	client   *fasthttp.Client
	timeout  time.Duration
}

func NewOpenID(cfg *config.Config) *OpenID {
	return &OpenID{
		endpoint: cfg.SteamOpenIDURL,
		returnTo: cfg.ServerURL + "/auth/steam/return",
		realm:    cfg.ServerURL + "/",
		client: &fasthttp.Client{
			Name:         "dota-tracker",
			ReadTimeout:  constants.ExternalAPITimeout,
			WriteTimeout: constants.ExternalAPITimeout,
		},
		timeout: constants.ExternalAPITimeout,
	}
}

// RedirectURL is the Steam login page the browser is sent to.
func (o *OpenID) RedirectURL() string {
	q := url.Values{}
	q.Set("openid.ns", openIDNamespace)
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.return_to", o.returnTo)
	q.Set("openid.realm", o.realm)
	q.Set("openid.identity", identifierSelect)
	q.Set("openid.claimed_id", identifierSelect)
	return o.endpoint + "?" + q.Encode()
}

// Verify checks a positive assertion with the provider and returns the
// SteamID64 it vouches for.
func (o *OpenID) Verify(ctx context.Context, params url.Values) (string, error) {
	if params.Get("openid.mode") != "id_res" {
		return "", fmt.Errorf("%w: mode %q", ErrAssertionInvalid, params.Get("openid.mode"))
	}
	if !strings.HasPrefix(params.Get("openid.return_to"), o.returnTo) {
		return "", fmt.Errorf("%w: unexpected return_to", ErrAssertionInvalid)
	}
	m := claimedIDRe.FindStringSubmatch(params.Get("openid.claimed_id"))
	if m == nil || !steamid.ValidExternal(m[1]) {
		return "", fmt.Errorf("%w: unexpected claimed_id", ErrAssertionInvalid)
	}

	form := url.Values{}
	for k, v := range params {
		if strings.HasPrefix(k, "openid.") && len(v) > 0 {
			form.Set(k, v[0])
		}
	}
	form.Set("openid.mode", "check_authentication")

	valid, err := o.checkAuthentication(ctx, form)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", fmt.Errorf("%w: rejected by provider", ErrAssertionInvalid)
	}
	return m[1], nil
}

func (o *OpenID) checkAuthentication(ctx context.Context, form url.Values) (bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(o.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	timeout := o.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := o.client.DoTimeout(req, resp, timeout); err != nil {
		return false, fmt.Errorf("openid check_authentication: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return false, fmt.Errorf("openid check_authentication: status %d", resp.StatusCode())
	}

	// key-value form: one "key:value" per line
	scanner := bufio.NewScanner(bytes.NewReader(resp.Body()))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(key) == "is_valid" {
			return strings.TrimSpace(value) == "true", nil
		}
	}
	return false, nil
}
