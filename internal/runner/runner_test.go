package runner

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/projectdiscovery/cidrx/pkg/aggregate"
)

func TestReadLines(t *testing.T) {
	input := "10.0.0.1\n\n  # comment\n 10.0.0.2  \n#10.0.0.3\n\t10.0.0.4\n"
	got, err := readLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readLines() error = %v", err)
	}
	if want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("readLines() = %v, want %v", got, want)
	}
}

func TestNormalizeTargets(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []string
		wantErr bool
	}{
		{
			name: "dedupe and numeric sort",
			raw:  []string{"10.0.0.10", " 10.0.0.9 ", "10.0.0.10", ""},
			want: []string{"10.0.0.9", "10.0.0.10"},
		},
		{
			name: "cidr expanded",
			raw:  []string{"192.168.1.0/30", "192.168.1.1"},
			want: []string{"192.168.1.0", "192.168.1.1", "192.168.1.2", "192.168.1.3"},
		},
		{
			name: "host bits masked",
			raw:  []string{"192.168.1.3/31"},
			want: []string{"192.168.1.2", "192.168.1.3"},
		},
		{
			name: "malformed passes through",
			raw:  []string{"10.0.0.1", "not-an-ip"},
			want: []string{"10.0.0.1", "not-an-ip"},
		},
		{name: "cidr too wide", raw: []string{"10.0.0.0/8"}, wantErr: true},
		{name: "bad cidr", raw: []string{"10.0.0.0/33"}, wantErr: true},
		{name: "ipv6 cidr", raw: []string{"2001:db8::/120"}, wantErr: true},
		{name: "empty", raw: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeTargets(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeTargets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeTargets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		options Options
		wantErr bool
	}{
		{name: "no input", options: Options{}, wantErr: true},
		{name: "ip input", options: Options{IPs: []string{"10.0.0.1"}}},
		{name: "stdin input", options: Options{Stdin: true}},
		{name: "domain with list", options: Options{Domain: "example.com", List: "ips.txt"}, wantErr: true},
		{name: "both only modes", options: Options{Stdin: true, CIDROnly: true, IPOnly: true}, wantErr: true},
		{name: "bad resolver mode", options: Options{Domain: "example.com", ResolverMode: "tcp"}, wantErr: true},
		{name: "bad export mode", options: Options{Stdin: true, Export: []string{"cidr", "xml"}}, wantErr: true},
		{name: "dns mode", options: Options{Domain: "example.com", ResolverMode: "DNS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.options.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	options := Options{Stdin: true}
	if err := options.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if options.ResolverMode != ResolverModeDoH || options.BatchSize <= 0 || options.OutputDir != "." {
		t.Errorf("validate() did not fill defaults: %+v", options)
	}
}

func newTestRunner(t *testing.T, options *Options) (*Runner, *bytes.Buffer) {
	t.Helper()
	if err := options.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	r, err := NewRunner(options)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	var out bytes.Buffer
	r.stdout = &out
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return r, &out
}

func TestRunWithAddressList(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "ips.txt")
	if err := os.WriteFile(list, []byte("# office\n10.0.0.2\n10.0.0.1\n\n8.8.8.8\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	r, out := newTestRunner(t, &Options{
		List:      list,
		IPs:       []string{"10.0.0.1"},
		CIDROnly:  true,
		NoColor:   true,
		Export:    []string{"cidr", "full"},
		OutputDir: outDir,
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "8.8.8.8/32\n10.0.0.0/30\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	for _, name := range []string{"cidrx_cidr_2024-05-01.json", "cidrx_full_2024-05-01.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("export %s missing: %v", name, err)
		}
	}
}

func TestRunFromStdin(t *testing.T) {
	r, out := newTestRunner(t, &Options{Stdin: true, IPOnly: true})
	r.stdin = strings.NewReader("10.0.0.10\n10.0.0.9\n10.0.0.9\n")

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "10.0.0.9\n10.0.0.10\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunMalformedInput(t *testing.T) {
	r, out := newTestRunner(t, &Options{IPs: []string{"10.0.0.1", "10.0.0.300"}})
	err := r.Run(context.Background())
	if err == nil {
		t.Fatal("Run() expected error for malformed address")
	}
	if !errors.Is(err, aggregate.ErrMalformedAddress) {
		t.Errorf("Run() error = %v, want ErrMalformedAddress", err)
	}
	var malformed *aggregate.MalformedAddressError
	if !errors.As(err, &malformed) || malformed.Address != "10.0.0.300" {
		t.Errorf("Run() error = %v, want *MalformedAddressError for 10.0.0.300", err)
	}
	if out.Len() != 0 {
		t.Errorf("Run() wrote output on failure: %q", out.String())
	}
}

func TestRunWithDomain(t *testing.T) {
	crtsh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name_value": "www.example.com\napi.example.com"},
			{"name_value": "mail.example.com"},
			{"name_value": "other.test"}
		]`))
	}))
	defer crtsh.Close()

	answers := map[string]string{
		"www.example.com":  `{"Status":0,"Answer":[{"type":1,"data":"10.0.0.1"}]}`,
		"api.example.com":  `{"Status":0,"Answer":[{"type":1,"data":"10.0.0.2"},{"type":1,"data":"10.0.0.1"}]}`,
		"mail.example.com": `{"Status":3}`,
	}
	doh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := answers[r.URL.Query().Get("name")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer doh.Close()

	outDir := t.TempDir()
	r, out := newTestRunner(t, &Options{
		Domain:     "example.com",
		CrtShURL:   crtsh.URL,
		DoHURL:     doh.URL,
		BatchSize:  2,
		BatchDelay: time.Millisecond,
		Timeout:    5 * time.Second,
		Details:    true,
		NoColor:    true,
		Export:     []string{"ips"},
		OutputDir:  outDir,
	})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Found 3 subdomains:",
		"api.example.com\nmail.example.com\nwww.example.com\n",
		"Found 2 unique IP addresses:",
		"SUBNETS (CIDR):\n10.0.0.0/30\n",
		"ALL IPS:\n10.0.0.1\n10.0.0.2\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "example.com_ips_2024-05-01.json"))
	if err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if !strings.Contains(string(data), `"hostname": "10.0.0.2/32"`) {
		t.Errorf("export content = %s", data)
	}

	if r.resolver.Cache().Len() != 3 {
		t.Errorf("cache holds %d entries, want 3", r.resolver.Cache().Len())
	}
}
