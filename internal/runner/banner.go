package runner

import (
	"github.com/projectdiscovery/cidrx/pkg/version"
	"github.com/projectdiscovery/gologger"
)

const banner = `
       _     __
  ____(_)___/ /______ __
 / __/ / __  / ___/ |/_/
/ /_/ / /_/ / /  _>  <
\__/_/\__,_/_/  /_/|_|
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s %s\n", banner, au.Faint(version.GetVersion()))
	gologger.Print().Msgf("\t\tprojectdiscovery.io\n\n")
}
