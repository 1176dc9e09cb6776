// Package entrez is a thin client for the NCBI Entrez E-utilities, covering
// the four operations the download pipeline needs: esearch, elink, esummary
// and efetch. Every outbound request carries the identifying contact email
// and tool name, and every remote call goes through the bounded retry
// executor in retry.go.
package entrez

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool    = "taxseq"
	DefaultRetries = 20
)

// Config carries client construction parameters. Email identifies the caller
// to NCBI; enforcing its presence is the CLI layer's job.
type Config struct {
	BaseURL    string
	Email      string
	Tool       string
	Retries    int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	email   string
	tool    string
	retries int
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		email:   cfg.Email,
		tool:    cfg.Tool,
		retries: cfg.Retries,
		http:    cfg.HTTPClient,
		log:     cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.tool == "" {
		c.tool = DefaultTool
	}
	if c.retries <= 0 {
		c.retries = DefaultRetries
	}
	if c.http == nil {
		// No wall-clock timeout: only the retry ceiling bounds attempts.
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Retries reports the configured per-call attempt ceiling.
func (c *Client) Retries() int {
	return c.retries
}

func (c *Client) Logger() *zap.Logger {
	return c.log
}

func (c *Client) identify(params url.Values) url.Values {
	vals := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			vals.Add(k, v)
		}
	}
	if c.email != "" {
		vals.Set("email", c.email)
	}
	vals.Set("tool", c.tool)
	return vals
}

// get performs one attempt of an E-utilities call and returns the body.
func (c *Client) get(endpoint string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, c.identify(params).Encode())
	resp, err := c.http.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	return readResponse(endpoint, resp)
}

// post performs one attempt with the parameters form-encoded in the request
// body. Identifier lists can run to tens of thousands of UIDs; the server
// rejects them in a query string, so bulk-id calls must go through here.
func (c *Client) post(endpoint string, params url.Values) ([]byte, error) {
	resp, err := c.http.PostForm(c.baseURL+"/"+endpoint, c.identify(params))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	return readResponse(endpoint, resp)
}

func readResponse(endpoint string, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", endpoint, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return body, nil
}
