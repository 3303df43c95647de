// Package apiclient talks to the Django-style CRUD API behind the console.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/iota-uz/staff-console/pkg/configuration"
)

// TokenSource supplies the auth token attached to every request.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	CSRFCookieName  string
	CSRFHeaderName  string
	RequestIDHeader string
	MaxUploadSize   int64

	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func OptionsFromConfig(conf *configuration.Configuration) Options {
	return Options{
		BaseURL:         conf.API.BaseURL,
		Timeout:         conf.API.Timeout,
		CSRFCookieName:  conf.API.CSRFCookieName,
		CSRFHeaderName:  conf.API.CSRFHeaderName,
		RequestIDHeader: conf.API.RequestIDHeader,
		MaxUploadSize:   conf.API.MaxUploadSize,
		Logger:          conf.Logger(),
	}
}

func (o *Options) setDefaults() {
	if o.CSRFCookieName == "" {
		o.CSRFCookieName = "csrftoken"
	}
	if o.CSRFHeaderName == "" {
		o.CSRFHeaderName = "X-CSRFToken"
	}
	if o.MaxUploadSize == 0 {
		o.MaxUploadSize = 16 << 20
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	opts    Options
	log     *logrus.Entry
}

func New(opts Options) (*Client, error) {
	opts.setDefaults()
	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base url: %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "cookie jar")
		}
		httpClient.Jar = jar
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		opts:    opts,
		log:     opts.Logger.WithField("component", "apiclient"),
	}, nil
}

// SetTokens replaces the token source, e.g. after sign-in.
func (c *Client) SetTokens(tokens TokenSource) {
	c.opts.Tokens = tokens
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) MaxUploadSize() int64 {
	return c.opts.MaxUploadSize
}

func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (c *Client) csrfToken(u *url.URL) string {
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == c.opts.CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.opts.RequestIDHeader != "" {
		req.Header.Set(c.opts.RequestIDHeader, uuid.NewString())
	}
	if c.opts.Tokens != nil {
		if token := c.opts.Tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}
	if method != http.MethodGet && method != http.MethodHead {
		if csrf := c.csrfToken(u); csrf != "" {
			req.Header.Set(c.opts.CSRFHeaderName, csrf)
		}
	}
	return req, nil
}

// send performs req and returns the raw response body of a 2xx response.
func (c *Client) send(req *http.Request) (int, []byte, error) {
	start := time.Now()
	entry := c.log.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})
	if c.opts.RequestIDHeader != "" {
		entry = entry.WithField("request_id", req.Header.Get(c.opts.RequestIDHeader))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := KindTransport
		if errors.Is(err, context.Canceled) || errors.Is(req.Context().Err(), context.Canceled) {
			kind = KindCanceled
		}
		entry.WithError(err).Debug("request failed")
		return 0, nil, &Error{Kind: kind, Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindTransport, Method: req.Method, URL: req.URL.String(), Status: resp.StatusCode, Err: err}
	}
	entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, newStatusError(req.Method, req.URL.String(), resp.StatusCode, body)
	}
	return resp.StatusCode, body, nil
}

// DoJSON sends in as a JSON body and decodes a JSON response into out.
// Both may be nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, query url.Values, in, out any) (int, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "json marshal request")
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, c.endpoint(path, query), body, contentType)
	if err != nil {
		return 0, err
	}
	status, respBody, err := c.send(req)
	if err != nil {
		return status, err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return status, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return status, &Error{Kind: KindDecode, Method: method, URL: req.URL.String(), Status: status, Err: err}
	}
	return status, nil
}
