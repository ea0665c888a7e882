// Lanemap - platform port-mapping resolver
//
// Loads a switch platform's port mapping (chips, SerDes lane wiring and
// per-profile lane settings), validates it, answers lane queries, and
// programs SONiC CONFIG_DB PORT entries from it.
//
// Context flags select the mapping; commands query it:
//
//	lanemap -p <platform> [-p <platform>...] <noun> <verb> [args]
//	lanemap -f <file> <noun> <verb> [args]
//
// Examples:
//
//	lanemap platform list                       # Platforms in the mapping dir
//	lanemap -p wedge400 validate                # Build and report errors
//	lanemap -p wedge400 port show eth1/1/1      # Pins and profiles of a port
//	lanemap -p wedge400 resolve 1 22 --cable-length 1.0
//	lanemap -p wedge400 publish --redis 10.0.0.1:6379 -x
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/lanemap/pkg/audit"
	"github.com/newtron-network/lanemap/pkg/cli"
	"github.com/newtron-network/lanemap/pkg/mapping"
	"github.com/newtron-network/lanemap/pkg/platform"
	"github.com/newtron-network/lanemap/pkg/settings"
	"github.com/newtron-network/lanemap/pkg/util"
	"github.com/newtron-network/lanemap/pkg/version"
)

var (
	// Global context flags
	platformNames []string // -p, --platform
	mappingFile   string   // -f, --file

	// Global option flags
	mappingDir string
	verbose    bool
	jsonOutput bool
	logJSON    bool

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "lanemap",
	Short:             "Platform port-mapping resolver",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Lanemap loads switch platform mappings and resolves ports to SerDes lanes.

Context flags select the mapping; commands query it. publish previews
CONFIG_DB changes by default; use -x to write them.

  lanemap -p <platform> <noun> <verb> [args]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if mappingDir == "" {
			mappingDir = userSettings.GetMappingDir()
		}
		if len(platformNames) == 0 && userSettings.DefaultPlatform != "" {
			platformNames = []string{userSettings.DefaultPlatform}
		}

		if cmd.Name() == "publish" {
			auditLogger, err := openAuditLog()
			if err != nil {
				util.Warnf("Could not initialize audit logging: %v", err)
			} else {
				audit.SetDefaultLogger(auditLogger)
			}
		}

		// Quiet by default, verbose on -v
		level := "warn"
		if userSettings.LogLevel != "" {
			level = userSettings.LogLevel
		}
		if verbose {
			level = "debug"
		}
		if logJSON {
			util.SetJSONFormat()
		}
		return util.SetLogLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&platformNames, "platform", "p", nil, "Platform name (repeat to merge PIM files)")
	rootCmd.PersistentFlags().StringVarP(&mappingFile, "file", "f", "", "Load a mapping file directly")
	rootCmd.PersistentFlags().StringVarP(&mappingDir, "mapping-dir", "D", "", "Platform mapping directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Mapping Queries:"},
		&cobra.Group{ID: "program", Title: "Port Programming:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{
		platformCmd, chipCmd, portCmd, profileCmd, resolveCmd, lanesCmd, validateCmd,
	} {
		cmd.GroupID = "query"
		rootCmd.AddCommand(cmd)
	}

	publishCmd.GroupID = "program"
	rootCmd.AddCommand(publishCmd)

	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(version.Get())
		}
		if version.Version == "dev" {
			fmt.Println("lanemap dev build (set version info with -ldflags)")
		} else {
			fmt.Printf("lanemap %s (%s)\n", version.Version, version.GitCommit)
		}
		return nil
	},
}

// ============================================================================
// Context Helpers
// ============================================================================

func newLoader() *platform.Loader {
	return platform.NewLoader(mappingDir)
}

// requireMapping loads the mapping selected by -f or -p.
func requireMapping() (*mapping.Mapping, error) {
	if mappingFile != "" {
		return platform.LoadFile(mappingFile)
	}
	if len(platformNames) == 0 {
		return nil, fmt.Errorf("platform required: use -p <platform>, -f <file>, or 'lanemap settings set platform <name>'")
	}
	return newLoader().LoadMerged(platformNames...)
}

// mappingLabel names the selected mapping in output.
func mappingLabel() string {
	if mappingFile != "" {
		return mappingFile
	}
	return strings.Join(platformNames, "+")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printDryRunNotice prints the dry-run footer for write commands.
func printDryRunNotice(execute bool) {
	if !execute {
		fmt.Println("\n" + cli.Yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
}
