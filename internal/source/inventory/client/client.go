package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"gitlab.com/fleetops/whitelistd/internal/httptransport"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/metrics"
)

// ConnectionErrorMsg to be returned with `Status` function
const ConnectionErrorMsg = "failed to connect to the inventory API"

// tokenIssuer is the JWT issuer the inventory API expects
const tokenIssuer = "whitelistd"

// apiRequestHeader carries the signed token on every API request
const apiRequestHeader = "Whitelistd-Api-Request"

var (
	errUnauthorized = errors.New("inventory API rejected the request token")
	errUnknown      = errors.New("unexpected response from inventory API")
)

// Client is a HTTP client to access the inventory API
type Client struct {
	secretKey      []byte
	baseURL        *url.URL
	httpClient     *http.Client
	jwtTokenExpiry time.Duration
}

// NewClient initializes and returns a new Client. An empty server URL or
// secret is an error, callers are expected to have validated the
// configuration already.
func NewClient(baseURL string, secretKey []byte, connectionTimeout, jwtTokenExpiry time.Duration) (*Client, error) {
	if baseURL == "" || len(secretKey) == 0 {
		return nil, errors.New("both inventory server URL and API secret are required")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if connectionTimeout == 0 {
		return nil, errors.New("inventory client connection timeout is not set")
	}

	if jwtTokenExpiry == 0 {
		return nil, errors.New("inventory JWT token expiry is not set")
	}

	return &Client{
		secretKey: secretKey,
		baseURL:   parsedURL,
		httpClient: &http.Client{
			Timeout: connectionTimeout,
			Transport: httptransport.NewMeteredRoundTripper(
				"inventory_api",
				metrics.SourceAPITraceDuration,
				metrics.SourceAPICallDuration,
				metrics.SourceAPIReqTotal,
				httptransport.DefaultTTFBTimeout,
			),
		},
		jwtTokenExpiry: jwtTokenExpiry,
	}, nil
}

// NewFromConfig creates a new client from the daemon Config
func NewFromConfig(cfg Config) (*Client, error) {
	return NewClient(
		cfg.InventoryServerURL(),
		cfg.InventoryAPISecret(),
		cfg.InventoryClientConnectionTimeout(),
		cfg.InventoryJWTTokenExpiry(),
	)
}

// GetBagItem fetches a data bag item and wraps it into a Lookup. Problems
// are recorded on the Lookup rather than returned so a failed fetch can be
// cached the same way a successful one is.
func (ic *Client) GetBagItem(ctx context.Context, bag, name string) api.Lookup {
	lookup := api.Lookup{Bag: bag, Name: name}

	path := fmt.Sprintf("/api/v1/data/%s/%s", url.PathEscape(bag), url.PathEscape(name))

	resp, err := ic.get(ctx, path, api.ErrBagItemNotFound)
	if err != nil {
		lookup.Error = err
		return lookup
	}
	defer resp.Body.Close()

	fields := make(map[string]interface{})
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		lookup.Error = err
		return lookup
	}

	lookup.Item = api.NewItem(bag, name, fields)

	return lookup
}

// GetNode fetches a node by its fully qualified domain name and wraps it
// into a NodeLookup
func (ic *Client) GetNode(ctx context.Context, fqdn string) api.NodeLookup {
	lookup := api.NodeLookup{FQDN: fqdn}

	resp, err := ic.get(ctx, "/api/v1/nodes/"+url.PathEscape(fqdn), api.ErrNodeNotFound)
	if err != nil {
		lookup.Error = err
		return lookup
	}
	defer resp.Body.Close()

	node := &api.Node{}
	if err := json.NewDecoder(resp.Body).Decode(node); err != nil {
		lookup.Error = err
		return lookup
	}

	lookup.Node = node

	return lookup
}

// Status checks that the inventory API is reachable and accepts our token
func (ic *Client) Status() error {
	resp, err := ic.get(context.Background(), "/api/v1/status", errUnknown)
	if err != nil {
		return fmt.Errorf("%s: %w", ConnectionErrorMsg, err)
	}
	defer resp.Body.Close()

	return nil
}

func (ic *Client) get(ctx context.Context, path string, notFound error) (*http.Response, error) {
	endpoint, err := ic.baseURL.Parse(path)
	if err != nil {
		return nil, err
	}

	req, err := ic.request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	resp, err := ic.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return resp, nil
	case http.StatusUnauthorized:
		resp.Body.Close()
		return nil, errUnauthorized
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, notFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", errUnknown, resp.StatusCode)
	}
}

func (ic *Client) request(ctx context.Context, endpoint *url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	token, err := ic.token()
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiRequestHeader, token)

	return req, nil
}

func (ic *Client) token() (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ic.jwtTokenExpiry)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ic.secretKey)
	if err != nil {
		return "", err
	}

	return token, nil
}
