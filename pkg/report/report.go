// Package report renders enumeration and aggregation results as plain text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/cidrx/pkg/aggregate"
)

const ruleWidth = 40

// Options controls the IP report.
type Options struct {
	// Details lists the members of every group holding more than one address
	Details bool
	// NoColor disables colored headings
	NoColor bool
}

func (o Options) aurora() *aurora.Aurora {
	return aurora.New(aurora.WithColors(!o.NoColor))
}

// Subdomains writes the list of enumerated names.
func Subdomains(w io.Writer, subs []string, opts Options) error {
	bw := bufio.NewWriter(w)
	au := opts.aurora()

	if len(subs) == 0 {
		fmt.Fprintln(bw, au.Red("No subdomains found."))
		return bw.Flush()
	}

	fmt.Fprintf(bw, "%s\n\n", au.Green(fmt.Sprintf("Found %s subdomains:", humanize.Comma(int64(len(subs))))))
	for _, s := range subs {
		fmt.Fprintln(bw, s)
	}
	return bw.Flush()
}

// IPs writes the subnet summary for ips followed by the full address list.
func IPs(w io.Writer, ips []string, groups []aggregate.Group, opts Options) error {
	bw := bufio.NewWriter(w)
	au := opts.aurora()

	if len(ips) == 0 {
		fmt.Fprintln(bw, au.Red("No IP addresses found."))
		return bw.Flush()
	}

	fmt.Fprintf(bw, "%s\n\n", au.Green(fmt.Sprintf("Found %s unique IP addresses:", humanize.Comma(int64(len(ips))))))

	fmt.Fprintln(bw, au.Bold("SUBNETS (CIDR):"))
	for _, g := range groups {
		fmt.Fprintln(bw, g.Subnet())
	}

	if opts.Details {
		fmt.Fprintf(bw, "\n%s\n", au.Bold("SUBNET DETAILS:"))
		for _, g := range groups {
			if len(g.Members) < 2 {
				continue
			}
			fmt.Fprintf(bw, "\n%s (%s addresses in block):\n", au.Cyan(g.Subnet()), humanize.Comma(int64(g.Size())))
			for _, m := range g.Members {
				fmt.Fprintf(bw, "  - %s\n", m)
			}
		}
	}

	fmt.Fprintf(bw, "\n%s\n", strings.Repeat("─", ruleWidth))
	fmt.Fprintln(bw, au.Bold("ALL IPS:"))
	for _, ip := range ips {
		fmt.Fprintln(bw, ip)
	}
	return bw.Flush()
}

// CIDRList writes one subnet per line.
func CIDRList(w io.Writer, groups []aggregate.Group) error {
	bw := bufio.NewWriter(w)
	for _, g := range groups {
		fmt.Fprintln(bw, g.Subnet())
	}
	return bw.Flush()
}

// IPList writes one address per line.
func IPList(w io.Writer, ips []string) error {
	bw := bufio.NewWriter(w)
	for _, ip := range ips {
		fmt.Fprintln(bw, ip)
	}
	return bw.Flush()
}
