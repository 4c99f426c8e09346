package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
)

// BrowserClient drives the HTML app like a browser that does not follow
// redirects, so tests can assert on each 302.
type BrowserClient struct {
	BaseURL string
	Client  *http.Client
}

func NewBrowserClient(t *testing.T, baseURL string) *BrowserClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}

	return &BrowserClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// GET makes a GET request
func (c *BrowserClient) GET(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := c.Client.Get(c.BaseURL + path)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// PostForm submits form as application/x-www-form-urlencoded.
func (c *BrowserClient) PostForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

// Login posts the credentials and returns the response.
func (c *BrowserClient) Login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	return c.PostForm(t, "/login", url.Values{"username": {username}, "password": {password}})
}

// ReadBody reads and returns the response body as string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return string(body)
}

// AssertStatusCode asserts the response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()

	if resp.StatusCode != expected {
		body := ReadBody(t, resp)
		t.Errorf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, body)
	}
}

// AssertRedirect asserts a 302 to location and drains the body.
func AssertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Errorf("Expected status 302, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
	io.Copy(io.Discard, resp.Body)
}
