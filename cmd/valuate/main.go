// valuate runs the valuation engines against a case document and prints
// JSON results on stdout. Progress and diagnostics go to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"corpval/pkg/api"
	"corpval/pkg/config"
	"corpval/pkg/core/scenario"
	"corpval/pkg/input"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "valuate",
	Short: "Corporate valuation engine: DCF, multiples, LBO and scenarios",
	Long: `valuate reads a case document (YAML, JSON or Hjson) holding historical
statements and assumptions, runs the requested valuation engine and
prints the result as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	log.SetFlags(0)

	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "abort scenario and sensitivity runs after this long (0 = no limit)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(dcfCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(compsCmd)
	rootCmd.AddCommand(lboCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("valuate %s (commit %s)\n", version, commit)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		api.Version = version
		log.Printf("[CLI] API server listening on %s", cfg.Addr())
		return api.NewServer(cfg).ListenAndServe(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- helpers ---

func loadDocument(path string) (*input.Document, error) {
	doc, err := input.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[CLI] Loaded %q: %d period(s)", doc.Company, len(doc.Statements))
	return doc, nil
}

// runContext applies the --timeout flag.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func newEngine() *scenario.Engine {
	return scenario.NewEngine(cfg)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
