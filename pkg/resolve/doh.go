package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/projectdiscovery/cidrx/pkg"
	"github.com/projectdiscovery/cidrx/pkg/client"
	"github.com/projectdiscovery/cidrx/pkg/version"
	"github.com/tidwall/gjson"
)

const (
	DefaultDoHTimeout = 10 * time.Second

	// typeA is the DNS record type number of an IPv4 address record
	typeA = 1
)

// DoHResolver queries a JSON DNS API such as https://dns.google/resolve.
type DoHResolver struct {
	endpoint   string
	httpClient *http.Client
}

// NewDoHResolver creates a resolver for the configured JSON DNS endpoint.
func NewDoHResolver() *DoHResolver {
	return NewDoHResolverWithEndpoint(pkg.DoHURL, nil)
}

// NewDoHResolverWithEndpoint creates a resolver for endpoint. A nil httpClient uses a
// default client with a 10s timeout.
func NewDoHResolverWithEndpoint(endpoint string, httpClient *http.Client) *DoHResolver {
	if httpClient == nil {
		httpClient = client.CreateClient(DefaultDoHTimeout, version.UserAgent())
	}
	return &DoHResolver{endpoint: endpoint, httpClient: httpClient}
}

// Resolve returns the A records for host. A name without A records is not an error.
func (d *DoHResolver) Resolve(ctx context.Context, host string) ([]string, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid doh endpoint %q: %w", d.endpoint, err)
	}
	q := u.Query()
	q.Set("name", host)
	q.Set("type", "A")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doh request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return parseDoHAnswer(body)
}

func parseDoHAnswer(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid doh json response")
	}

	ips := []string{}
	gjson.GetBytes(body, "Answer").ForEach(func(_, answer gjson.Result) bool {
		if answer.Get("type").Int() == typeA {
			ips = append(ips, answer.Get("data").String())
		}
		return true
	})
	return ips, nil
}
