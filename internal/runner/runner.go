package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/projectdiscovery/cidrx/pkg/aggregate"
	"github.com/projectdiscovery/cidrx/pkg/client"
	"github.com/projectdiscovery/cidrx/pkg/enum/crtsh"
	"github.com/projectdiscovery/cidrx/pkg/export"
	"github.com/projectdiscovery/cidrx/pkg/report"
	"github.com/projectdiscovery/cidrx/pkg/resolve"
	"github.com/projectdiscovery/cidrx/pkg/version"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/mapcidr"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
	sliceutil "github.com/projectdiscovery/utils/slice"
	"github.com/rs/xid"
)

// minExpandPrefix is the widest CIDR input expanded into its addresses
const minExpandPrefix = 16

// defaultExportName prefixes export files when no domain was given
const defaultExportName = "cidrx"

// Runner contains the internal logic of the program
type Runner struct {
	options    *Options
	runID      string
	enumerator *crtsh.Client
	resolver   *resolve.Client
	stdin      io.Reader
	stdout     io.Writer
	now        func() time.Time
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	r := &Runner{
		options: options,
		runID:   xid.New().String(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		now:     time.Now,
	}

	if options.Domain == "" {
		return r, nil
	}

	httpClient := client.CreateClient(options.Timeout, version.UserAgent())
	r.enumerator = crtsh.New(crtsh.WithBaseURL(options.CrtShURL), crtsh.WithHTTPClient(httpClient))

	var resolver resolve.Resolver
	switch options.ResolverMode {
	case ResolverModeDNS:
		dnsResolver, err := resolve.NewDNSResolver(options.Resolvers, resolve.DefaultDNSTimeout)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not create dns resolver")
		}
		resolver = dnsResolver
	default:
		resolver = resolve.NewDoHResolverWithEndpoint(options.DoHURL, httpClient)
	}
	r.resolver = resolve.NewClient(resolver, resolve.NewCache(options.CacheSize, options.CacheTTL))

	return r, nil
}

// Run the instance
func (r *Runner) Run(ctx context.Context) error {
	gologger.Verbose().Msgf("starting run %s", r.runID)

	var (
		ips []string
		err error
	)
	if r.options.Domain != "" {
		ips, err = r.discover(ctx)
	} else {
		ips, err = r.collectTargets()
	}
	if err != nil {
		return err
	}

	groups, err := aggregate.AggregateStrings(ips)
	if err != nil {
		return fmt.Errorf("could not aggregate addresses: %w", err)
	}
	gologger.Info().Msgf("Grouped %d addresses into %d subnets", len(ips), len(groups))

	if err := r.writeResults(ips, groups); err != nil {
		return err
	}
	return r.exportResults(ips, groups)
}

// discover enumerates the domain's subdomains and resolves them
func (r *Runner) discover(ctx context.Context) ([]string, error) {
	gologger.Info().Msgf("Searching subdomains of %s through crt.sh", r.options.Domain)
	subs, err := r.enumerator.Enumerate(ctx, r.options.Domain)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not enumerate subdomains of %s", r.options.Domain)
	}

	if !r.options.CIDROnly && !r.options.IPOnly {
		if err := report.Subdomains(r.stdout, subs, r.reportOptions()); err != nil {
			return nil, err
		}
		_, _ = io.WriteString(r.stdout, "\n")
	}
	if len(subs) == 0 {
		return []string{}, nil
	}

	gologger.Info().Msgf("Resolving %d subdomains", len(subs))
	results, err := r.resolver.LookupAll(ctx, subs, resolve.BatchOptions{
		Size:  r.options.BatchSize,
		Delay: r.options.BatchDelay,
		Progress: func(processed, total int) {
			gologger.Info().Msgf("Resolved %d/%d", processed, total)
		},
	})
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("resolution interrupted")
	}

	for _, res := range results {
		if len(res.IPs) == 0 {
			gologger.Verbose().Msgf("%s: no A records", res.Host)
		}
	}
	return resolve.UniqueIPs(results), nil
}

// collectTargets gathers addresses from -ip, -list and stdin
func (r *Runner) collectTargets() ([]string, error) {
	var raw []string
	raw = append(raw, r.options.IPs...)

	if r.options.List != "" {
		if !fileutil.FileExists(r.options.List) {
			return nil, errorutil.New("input list %s does not exist", r.options.List)
		}
		f, err := os.Open(r.options.List)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not open input list %s", r.options.List)
		}
		lines, err := readLines(f)
		_ = f.Close()
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not read input list %s", r.options.List)
		}
		raw = append(raw, lines...)
	}

	if r.options.Stdin {
		lines, err := readLines(r.stdin)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not read stdin")
		}
		raw = append(raw, lines...)
	}

	targets, err := normalizeTargets(raw)
	if err != nil {
		return nil, err
	}
	gologger.Verbose().Msgf("collected %d unique addresses", len(targets))
	return targets, nil
}

// readLines returns trimmed lines, skipping blanks and # comments
func readLines(rd io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// normalizeTargets trims entries, expands CIDR ranges and drops duplicates.
// Anything that is neither a range nor an address is passed through so
// aggregation reports it as malformed.
func normalizeTargets(raw []string) ([]string, error) {
	var out []string
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.Contains(item, "/") {
			out = append(out, item)
			continue
		}
		expanded, err := expandCIDR(item)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	out = sliceutil.Dedupe(out)
	aggregate.SortStrings(out)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func expandCIDR(cidr string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil || !prefix.Addr().Is4() {
		return nil, errorutil.New("invalid ipv4 cidr: %s", cidr)
	}
	if prefix.Bits() < minExpandPrefix {
		return nil, errorutil.New("cidr %s is wider than /%d", cidr, minExpandPrefix)
	}
	ips, err := mapcidr.IPAddresses(prefix.Masked().String())
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not expand %s", cidr)
	}
	return ips, nil
}

func (r *Runner) reportOptions() report.Options {
	return report.Options{Details: r.options.Details, NoColor: r.options.NoColor}
}

func (r *Runner) writeResults(ips []string, groups []aggregate.Group) error {
	switch {
	case r.options.CIDROnly:
		return report.CIDRList(r.stdout, groups)
	case r.options.IPOnly:
		return report.IPList(r.stdout, ips)
	default:
		return report.IPs(r.stdout, ips, groups, r.reportOptions())
	}
}

func (r *Runner) exportResults(ips []string, groups []aggregate.Group) error {
	name := r.options.Domain
	if name == "" {
		name = defaultExportName
	}

	for _, m := range r.options.Export {
		mode, err := export.ParseMode(m)
		if err != nil {
			return err
		}
		records, err := export.BuildRecords(mode, ips, groups)
		if err != nil {
			return err
		}
		path, err := export.WriteFile(r.options.OutputDir, export.FileName(name, mode, r.now()), records)
		if err != nil {
			return errorutil.NewWithErr(err).Msgf("could not export %s results", mode)
		}
		gologger.Info().Msgf("Exported %d %s records to %s", len(records), mode, path)
	}
	return nil
}

// Close the runner instance
func (r *Runner) Close() {
	if r.resolver != nil {
		r.resolver.Cache().Purge()
	}
}
