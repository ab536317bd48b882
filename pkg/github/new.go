// Package github wraps the GitHub REST and GraphQL APIs for the bot.
package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	pkgLog "repo-autobot/pkg/log"
)

// Client talks to one GitHub installation (github.com or Enterprise).
type Client struct {
	gh         *gh.Client
	http       *http.Client
	token      string
	botLogin   string
	graphqlURL string
	l          pkgLog.Logger
}

// NewClient builds the production transport stack:
//  1. httpcache (ETag conditional requests)
//  2. go-github-ratelimit (sleeps on secondary rate limits)
//  3. go-github with token auth
func NewClient(cfg Config, l pkgLog.Logger) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(cfg.Token)

	graphqlURL := DefaultGraphQLURL
	if cfg.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL: %w", err)
		}
		graphqlURL = enterpriseGraphQLURL(client.BaseURL)
	}

	return &Client{
		gh:         client,
		http:       &http.Client{Timeout: graphqlTimeout},
		token:      cfg.Token,
		botLogin:   cfg.BotLogin,
		graphqlURL: graphqlURL,
		l:          l,
	}, nil
}

// NewClientWithHTTPClient points the client at baseURL, typically an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string, l pkgLog.Logger) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		http:       httpClient,
		token:      token,
		graphqlURL: graphqlU.String(),
		l:          l,
	}, nil
}

// WithBotLogin returns a copy of the client acting as login.
func (c *Client) WithBotLogin(login string) *Client {
	cp := *c
	cp.botLogin = login
	return &cp
}

// enterpriseGraphQLURL maps https://host/api/v3/ to https://host/api/graphql.
func enterpriseGraphQLURL(base *url.URL) string {
	u := *base
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/v3") + "/graphql"
	return u.String()
}
