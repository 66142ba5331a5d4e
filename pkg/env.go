package pkg

import envutil "github.com/projectdiscovery/utils/env"

var (
	CrtShURL = envutil.GetEnvOrDefault("CIDRX_CRTSH_URL", "https://crt.sh")
	DoHURL   = envutil.GetEnvOrDefault("CIDRX_DOH_URL", "https://dns.google/resolve")
)
