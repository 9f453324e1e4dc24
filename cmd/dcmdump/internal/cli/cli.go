package cli

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/hackermd/dcmslide/cmd/dcmdump/internal/build"
	"github.com/hackermd/dcmslide/cmd/dcmdump/internal/dcmdump"
)

const (
	appName        = "dcmdump"
	appDescription = "Inspect DICOM Part 10 file meta information, data sets, and pixel frames"
)

// CLI is the root command structure parsed by kong: -h for usage, -V for
// version, -v for verbose logging.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Version kong.VersionFlag `short:"V" help:"Print version and exit"`

	Paths []string `arg:"" type:"existingfile" help:"DICOM Part 10 files to dump"`
	Frame int      `name:"frame" short:"f" help:"Also extract and summarize this 1-based pixel frame"`
}

// Run parses os.Args and executes the dump command, mapping any failure to
// exit code 1.
func Run(version, commit, date string) error {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	kong.Parse(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.Vars{"version": build.Get().String()},
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	return dcmdump.Run(cli.Paths, cli.Frame, logger)
}
