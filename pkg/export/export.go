// Package export writes aggregation results as JSON record lists.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/projectdiscovery/cidrx/pkg/aggregate"
	fileutil "github.com/projectdiscovery/utils/file"
	"github.com/rs/xid"
)

// Mode selects which records an export contains.
type Mode string

const (
	// ModeCIDR exports one record per group subnet
	ModeCIDR Mode = "cidr"
	// ModeIPs exports one /32 record per address
	ModeIPs Mode = "ips"
	// ModeFull exports group subnets followed by a /32 record for every member of a
	// multi-member group. The web tool this replaces wrote only the subnets in full mode;
	// the member records are an addition.
	ModeFull Mode = "full"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeCIDR, ModeIPs, ModeFull}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown export mode %q (supported: cidr, ips, full)", s)
}

// Record is a single exported entry. IP is always empty; the block lives in Hostname.
type Record struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
}

// BuildRecords produces the records for mode.
func BuildRecords(mode Mode, ips []string, groups []aggregate.Group) ([]Record, error) {
	records := []Record{}
	switch mode {
	case ModeCIDR:
		for _, g := range groups {
			records = append(records, Record{Hostname: g.Subnet()})
		}
	case ModeIPs:
		for _, ip := range ips {
			records = append(records, Record{Hostname: ip + "/32"})
		}
	case ModeFull:
		for _, g := range groups {
			records = append(records, Record{Hostname: g.Subnet()})
		}
		for _, g := range groups {
			if len(g.Members) < 2 {
				continue
			}
			for _, m := range g.Members {
				records = append(records, Record{Hostname: m.String() + "/32"})
			}
		}
	default:
		return nil, fmt.Errorf("unknown export mode %q", mode)
	}
	return records, nil
}

// FileName returns <domain>_<mode>_<YYYY-MM-DD>.json using the UTC date of t.
func FileName(domain string, mode Mode, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.json", domain, mode, t.UTC().Format(time.DateOnly))
}

// Write encodes records as a two-space indented JSON array.
func Write(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling records: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing records: %w", err)
	}
	return nil
}

// WriteFile writes records to dir/name, creating dir if needed. The file is written
// under a temporary name first and renamed into place.
func WriteFile(dir, name string, records []Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fileutil.CreateFolder(dir); err != nil {
		return "", fmt.Errorf("could not create output folder %s: %w", dir, err)
	}

	target := filepath.Join(dir, name)
	tmp := filepath.Join(dir, "."+name+"."+xid.New().String()+".tmp")

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", tmp, err)
	}
	if err := Write(f, records); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("could not close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("could not move export into place: %w", err)
	}
	return target, nil
}
