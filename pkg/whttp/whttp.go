package whttp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mergington/signupboard/internal/utils"
	"golang.org/x/net/publicsuffix"
)

const USER_AGENT = "signupboard/1.0 (+https://github.com/mergington/signupboard)"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
	Body    []byte
}

type WHTTPRes struct {
	StatusCode  int
	ContentType string
	HTTPTitle   string
	BodyString  string
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	Timeout  time.Duration
	RetryMax int
	Proxy    string
	Jar      http.CookieJar
}

// NewClient returns a retryablehttp client that logs through utils.Log.
func NewClient(opts ClientOptions) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = utils.LeveledLogger{Logger: utils.Log}
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	// Hand back the last response instead of a generic "giving up" error
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	jar := opts.Jar
	if jar == nil {
		var err error
		jar, err = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
	}
	client.HTTPClient.Jar = jar

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		client.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client, nil
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (wRes *WHTTPRes, err error) {
	if client == nil {
		if client, err = NewClient(ClientOptions{}); err != nil {
			return nil, err
		}
	}

	var body interface{}
	if wReq.Body != nil {
		body = bytes.NewReader(wReq.Body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")

	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	// With the passthrough handler a 5xx comes back with both a response
	// and a policy error; the response is what callers need.
	resp, err := client.Do(req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("%s %s: no response", wReq.Method, wReq.URL)
		}
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	wRes = &WHTTPRes{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		BodyString:  string(bodyBytes),
	}

	if strings.Contains(wRes.ContentType, "text/html") {
		if title, ok := getHTMLTitle(wRes.BodyString); ok {
			wRes.HTTPTitle = title
		}
	}
	return wRes, nil
}

// IsSuccess reports a 2xx status.
func (r *WHTTPRes) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func getHTMLTitle(body string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		utils.Log.Debugf("Failed to parse HTML: %v", err)
		return "", false
	}
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return "", false
	}
	title := strings.ReplaceAll(strings.ReplaceAll(sel.Text(), "\n", ""), "\r", "")
	return strings.ToValidUTF8(strings.TrimSpace(title), ""), true
}
