package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"webprint-client/config"
)

// StatusError is a non-2xx answer from the print API.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status of a gateway error, or 0 when the request
// never produced a response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Client wraps outbound calls to the print REST API. The session cookie set
// by /api/login lives in the client's cookie jar.
type Client struct {
	baseURL *url.URL
	client  *http.Client
}

// New creates a gateway client for the configured API.
func New(cfg *config.APIConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			slog.Warn("invalid proxy url, gateway will not use a proxy", "proxy", cfg.HTTPProxy, "error", err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			Jar:       jar,
			// Logout answers with a redirect to the landing page; we only need the answer.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login posts the credentials. The server keeps them in the session cookie.
func (c *Client) Login(ctx context.Context, email, password string) error {
	form := url.Values{"email": {email}, "password": {password}}
	req, err := c.newFormRequest(ctx, "/api/login", form)
	if err != nil {
		return err
	}
	return c.do(req, "POST /api/login", nil)
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newFormRequest(ctx, "/api/logout", url.Values{})
	if err != nil {
		return err
	}
	err = c.do(req, "POST /api/logout", nil)
	if code := StatusCode(err); code >= 300 && code < 400 {
		return nil
	}
	return err
}

// Status fetches the budget and print queue in one call.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/uniflowstatus", nil)
	if err != nil {
		return nil, err
	}
	var out StatusResponse
	if err := c.do(req, "GET /api/uniflowstatus", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload streams a document as multipart field "file" and returns the server's
// file id. progress, when non-nil, is called as body bytes are sent.
func (c *Client) Upload(ctx context.Context, fileName string, size int64, content io.Reader, progress ProgressFunc) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	go func() {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{r: content, total: size, report: progress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	var out UploadResponse
	if err := c.do(req, "POST /api/upload", &out); err != nil {
		return "", err
	}
	if out.FileID == "" {
		return "", errors.New("POST /api/upload: response has no file_id")
	}
	return out.FileID, nil
}

// Print submits a job for a previously uploaded document.
func (c *Client) Print(ctx context.Context, p PrintRequest) error {
	form := url.Values{
		"file_id":      {p.FileID},
		"color":        {strconv.FormatBool(p.Color)},
		"double_sided": {strconv.FormatBool(p.DoubleSided)},
		"staple":       {strconv.FormatBool(p.Staple)},
		"collate":      {strconv.FormatBool(p.Collate)},
		"copies":       {strconv.Itoa(p.Copies)},
	}
	req, err := c.newFormRequest(ctx, "/api/print", form)
	if err != nil {
		return err
	}
	return c.do(req, "POST /api/print", nil)
}

// DeleteJob removes a job from the user's print queue.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	req, err := c.newFormRequest(ctx, "/api/deletejob/"+url.PathEscape(jobID), url.Values{})
	if err != nil {
		return err
	}
	return c.do(req, "POST /api/deletejob", nil)
}

// CloudPrintStatus reports whether cloud printing is set up for the user.
func (c *Client) CloudPrintStatus(ctx context.Context) (*CloudPrintStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/cloudprintstatus", nil)
	if err != nil {
		return nil, err
	}
	var out CloudPrintStatus
	if err := c.do(req, "GET /api/cloudprintstatus", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeCloudPrint revokes the cloud print token.
func (c *Client) RevokeCloudPrint(ctx context.Context) error {
	req, err := c.newFormRequest(ctx, "/api/revokecloudprint", url.Values{})
	if err != nil {
		return err
	}
	return c.do(req, "POST /api/revokecloudprint", nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) newFormRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response body: %w", op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to unmarshal response: %w", op, err)
	}
	return nil
}

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		// Without a known total the progress is not computable.
		if p.report != nil && p.total > 0 {
			p.report(p.loaded, p.total)
		}
	}
	return n, err
}
