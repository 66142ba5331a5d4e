package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/projectdiscovery/cidrx/pkg/aggregate"
)

func TestSubdomains(t *testing.T) {
	tests := []struct {
		name string
		subs []string
		want string
	}{
		{name: "empty", subs: nil, want: "No subdomains found.\n"},
		{
			name: "two names",
			subs: []string{"a.example.com", "b.example.com"},
			want: "Found 2 subdomains:\n\na.example.com\nb.example.com\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Subdomains(&buf, tt.subs, Options{NoColor: true}); err != nil {
				t.Fatalf("Subdomains() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Subdomains() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestIPs(t *testing.T) {
	ips := []string{"1.1.1.1", "10.0.0.1", "10.0.0.2"}
	groups, err := aggregate.AggregateStrings(ips)
	if err != nil {
		t.Fatalf("AggregateStrings() error = %v", err)
	}

	rule := strings.Repeat("─", 40)
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "with details",
			opts: Options{Details: true, NoColor: true},
			want: "Found 3 unique IP addresses:\n\n" +
				"SUBNETS (CIDR):\n1.1.1.1/32\n10.0.0.0/30\n" +
				"\nSUBNET DETAILS:\n" +
				"\n10.0.0.0/30 (4 addresses in block):\n  - 10.0.0.1\n  - 10.0.0.2\n" +
				"\n" + rule + "\n" +
				"ALL IPS:\n1.1.1.1\n10.0.0.1\n10.0.0.2\n",
		},
		{
			name: "without details",
			opts: Options{NoColor: true},
			want: "Found 3 unique IP addresses:\n\n" +
				"SUBNETS (CIDR):\n1.1.1.1/32\n10.0.0.0/30\n" +
				"\n" + rule + "\n" +
				"ALL IPS:\n1.1.1.1\n10.0.0.1\n10.0.0.2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := IPs(&buf, ips, groups, tt.opts); err != nil {
				t.Fatalf("IPs() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("IPs() =\n%s\nwant\n%s", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	if err := IPs(&buf, nil, nil, Options{NoColor: true}); err != nil {
		t.Fatalf("IPs() error = %v", err)
	}
	if buf.String() != "No IP addresses found.\n" {
		t.Errorf("IPs(nil) = %q", buf.String())
	}
}

func TestLists(t *testing.T) {
	groups, err := aggregate.AggregateStrings([]string{"10.0.0.1", "10.0.0.2", "8.8.8.8"})
	if err != nil {
		t.Fatalf("AggregateStrings() error = %v", err)
	}

	var buf bytes.Buffer
	if err := CIDRList(&buf, groups); err != nil {
		t.Fatalf("CIDRList() error = %v", err)
	}
	if want := "8.8.8.8/32\n10.0.0.0/30\n"; buf.String() != want {
		t.Errorf("CIDRList() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := IPList(&buf, []string{"8.8.8.8", "10.0.0.1"}); err != nil {
		t.Fatalf("IPList() error = %v", err)
	}
	if want := "8.8.8.8\n10.0.0.1\n"; buf.String() != want {
		t.Errorf("IPList() = %q, want %q", buf.String(), want)
	}
}
