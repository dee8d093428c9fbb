package gmaw

import (
	"context"
	"net/url"

	pkgerrs "github.com/metapub/go-meta-api-wrapper/pkg/errors"
	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) requireApp() error {
	if c.config.AppID == "" || c.config.AppSecret == "" {
		return &pkgerrs.ConfigError{Field: "AppID", Message: "AppID and AppSecret are required for OAuth operations"}
	}
	return nil
}

// ExchangeCode trades an OAuth authorization code for a user access token.
// Requires AppID and AppSecret in the configuration.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	if err := c.requireApp(); err != nil {
		return "", err
	}
	params := url.Values{
		"client_id":     {c.config.AppID},
		"client_secret": {c.config.AppSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
	}
	var resp tokenResponse
	if err := c.graph.Get(ctx, "oauth/access_token", params, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// ExtendToken trades a short-lived user token for a long-lived one.
func (c *Client) ExtendToken(ctx context.Context, shortToken string) (string, error) {
	if err := c.requireApp(); err != nil {
		return "", err
	}
	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {c.config.AppID},
		"client_secret":     {c.config.AppSecret},
		"fb_exchange_token": {shortToken},
	}
	var resp tokenResponse
	if err := c.graph.Get(ctx, "oauth/access_token", params, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// GetAccounts lists the pages the authorized user manages, including their
// page access tokens.
func (c *Client) GetAccounts(ctx context.Context) ([]types.Account, error) {
	params := url.Values{"fields": {"id,name,access_token,category"}}
	var resp struct {
		Data []types.Account `json:"data"`
	}
	if err := c.graph.Get(ctx, "me/accounts", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DebugToken introspects an access token: validity, type, and expiry.
// Requires AppID and AppSecret, which form the app token the inspection is
// authorized with.
func (c *Client) DebugToken(ctx context.Context, token string) (*types.TokenInfo, error) {
	if err := c.requireApp(); err != nil {
		return nil, err
	}
	params := url.Values{
		"input_token":  {token},
		"access_token": {c.config.AppID + "|" + c.config.AppSecret},
	}
	var resp struct {
		Data types.TokenInfo `json:"data"`
	}
	if err := c.graph.Get(ctx, "debug_token", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
