package runner

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/cidrx/pkg"
	"github.com/projectdiscovery/cidrx/pkg/enum/crtsh"
	"github.com/projectdiscovery/cidrx/pkg/export"
	"github.com/projectdiscovery/cidrx/pkg/resolve"
	"github.com/projectdiscovery/cidrx/pkg/version"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var au = aurora.New(aurora.WithColors(true))

var (
	BatchSizeEnv = envutil.GetEnvOrDefault("CIDRX_BATCH_SIZE", "")
	VerboseEnv   = envutil.GetEnvOrDefault("CIDRX_VERBOSE", "")
)

const (
	ResolverModeDoH = "doh"
	ResolverModeDNS = "dns"
)

// Options contains the configuration options for a cidrx run.
type Options struct {
	ConfigFile string

	Domain string
	List   string
	IPs    goflags.StringSlice
	Stdin  bool

	ResolverMode string
	CrtShURL     string
	DoHURL       string
	Resolvers    goflags.StringSlice
	BatchSize    int
	BatchDelay   time.Duration
	Timeout      time.Duration
	CacheSize    int
	CacheTTL     time.Duration

	Details   bool
	CIDROnly  bool
	IPOnly    bool
	Export    goflags.StringSlice
	OutputDir string

	Silent  bool
	Verbose bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`cidrx groups IPv4 addresses, or the addresses behind a domain's subdomains, into CIDR blocks`)

	defaultBatchSize := resolve.DefaultBatchSize
	if val, err := strconv.Atoi(BatchSizeEnv); err == nil && val > 0 {
		defaultBatchSize = val
	}

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Domain, "domain", "d", "", "domain to enumerate through certificate transparency and resolve"),
		flagSet.StringVarP(&options.List, "list", "l", "", "file containing ip addresses or cidr ranges to aggregate (one per line)"),
		flagSet.StringSliceVar(&options.IPs, "ip", nil, "ip addresses or cidr ranges to aggregate (comma separated)", goflags.CommaSeparatedStringSliceOptions),
	)

	flagSet.CreateGroup("resolution", "Resolution",
		flagSet.StringVarP(&options.ResolverMode, "resolver-mode", "rm", ResolverModeDoH, "resolver backend (doh, dns)"),
		flagSet.StringVar(&options.CrtShURL, "crtsh-url", pkg.CrtShURL, "crt.sh compatible search endpoint"),
		flagSet.StringVar(&options.DoHURL, "doh-url", pkg.DoHURL, "json dns api endpoint used in doh mode"),
		flagSet.StringSliceVarP(&options.Resolvers, "resolvers", "r", nil, "dns servers used in dns mode (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.IntVarP(&options.BatchSize, "batch-size", "bs", defaultBatchSize, "number of hostnames resolved concurrently per batch"),
		flagSet.DurationVarP(&options.BatchDelay, "batch-delay", "bd", resolve.DefaultBatchDelay, "pause between resolution batches"),
		flagSet.DurationVar(&options.Timeout, "timeout", crtsh.DefaultTimeout, "timeout for certificate transparency and doh requests"),
		flagSet.IntVar(&options.CacheSize, "cache-size", resolve.DefaultCacheSize, "maximum number of hostnames kept in the resolution cache"),
		flagSet.DurationVar(&options.CacheTTL, "cache-ttl", 0, "expire cached resolutions after this duration (0 keeps them for the run)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVar(&options.Details, "details", true, "list the members of every multi-address subnet"),
		flagSet.BoolVarP(&options.CIDROnly, "cidr-only", "co", false, "print only the cidr list"),
		flagSet.BoolVarP(&options.IPOnly, "ip-only", "io", false, "print only the ip list"),
		flagSet.StringSliceVarP(&options.Export, "export", "e", nil, "export results as json (cidr, ips, full)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.StringVarP(&options.OutputDir, "output-dir", "o", ".", "folder for json exports"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "cli flag configuration file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if options.ConfigFile != "" {
		if !fileutil.FileExists(options.ConfigFile) {
			gologger.Fatal().Msgf("config file %s does not exist\n", options.ConfigFile)
		}
		if err := flagSet.MergeConfigFile(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("could not read config file %s: %s\n", options.ConfigFile, err)
		}
	}

	if (VerboseEnv == "true" || VerboseEnv == "1") && !options.Verbose {
		options.Verbose = true
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	options.Stdin = fileutil.HasStdin()

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

// validate checks flag combinations and fills in defaults
func (options *Options) validate() error {
	if options.Domain == "" && options.List == "" && len(options.IPs) == 0 && !options.Stdin {
		return errors.New("no input provided: use -domain, -list, -ip or stdin")
	}
	if options.Domain != "" && (options.List != "" || len(options.IPs) > 0) {
		return errors.New("-domain cannot be combined with -list or -ip")
	}
	if options.CIDROnly && options.IPOnly {
		return errors.New("-cidr-only and -ip-only are mutually exclusive")
	}

	options.Domain = strings.TrimSpace(options.Domain)
	options.ResolverMode = strings.ToLower(strings.TrimSpace(options.ResolverMode))
	switch options.ResolverMode {
	case "":
		options.ResolverMode = ResolverModeDoH
	case ResolverModeDoH, ResolverModeDNS:
	default:
		return errors.New("invalid resolver mode: " + options.ResolverMode)
	}

	for _, mode := range options.Export {
		if _, err := export.ParseMode(mode); err != nil {
			return err
		}
	}

	if options.BatchSize <= 0 {
		options.BatchSize = resolve.DefaultBatchSize
	}
	if options.BatchDelay < 0 {
		options.BatchDelay = 0
	}
	if options.Timeout <= 0 {
		options.Timeout = crtsh.DefaultTimeout
	}
	if options.CacheSize <= 0 {
		options.CacheSize = resolve.DefaultCacheSize
	}
	if options.OutputDir == "" {
		options.OutputDir = "."
	}
	if options.CrtShURL == "" {
		options.CrtShURL = pkg.CrtShURL
	}
	if options.DoHURL == "" {
		options.DoHURL = pkg.DoHURL
	}
	return nil
}
