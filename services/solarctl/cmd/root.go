package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
	cfgpkg "github.com/02loveslollipop/solar-potential-dashboard/services/solarctl/internal/config"
)

// NewRootCmd builds the solarctl command tree. Each call returns fresh flag
// state.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "solarctl",
		Short:         "Fetch solar irradiance datasets and print dashboard reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (env SOLAR_* overrides it)")

	load := func() (*cfgpkg.Config, error) {
		return cfgpkg.Load(cfgFile)
	}
	root.AddCommand(newFetchCmd(load), newReportCmd(load))
	return root
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

type configLoader func() (*cfgpkg.Config, error)

func newLoader(cfg *cfgpkg.Config) *loader.Loader {
	return loader.New(
		loader.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		loader.WithS3Config(cfg.S3()),
	)
}
