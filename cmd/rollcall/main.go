package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rollcall/internal/config"
	"rollcall/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	launchURL  string
	sessionID  string
	endpoint   string

	// Resolved in PersistentPreRunE
	cfg  *config.Config
	logs *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Pick personnel from a roster and hand the selection to a host",
	Long: `rollcall loads the personnel list for a session, lets you search, group
and select records in an interactive picker, then delivers the selected ids
to the host as {"id": <session>, "identities": [...]}.

The session comes from the "id" query parameter of --url, or from --session.
Without a session id the bundled sample roster is used.

Run without a subcommand to start the interactive picker.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if endpoint != "" {
			cfg.Source.Endpoint = endpoint
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		// The picker draws on the terminal, so it only logs to a file.
		if (!cmd.HasParent() || cmd.Name() == "pick") && cfg.Logging.File == "" {
			logs = logging.Nop()
			return nil
		}
		logs, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logs.For(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath),
			zap.String("endpoint", cfg.Source.Endpoint),
			zap.String("host", cfg.Host.Kind))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logs != nil {
			_ = logs.Sync()
		}
	},
	RunE: runPick,
}

// pickCmd is the explicit form of the default command
var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Start the interactive picker (default)",
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

// showCmd prints the grouped partition without the interactive picker
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected/unselected partition for a session",
	Long: `Loads the session's records, applies --select, --search and --group, and
prints the resulting groups. Useful for scripting and for checking what the
picker would display.

Example:
  rollcall show --session abc --select 1,5 --group rank`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

// submitCmd delivers a selection to the host without the picker
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a selection to the host non-interactively",
	Long: `Loads the session's records, checks that every --select id exists, then
signals ready and delivers the submission to the configured host, the same
sequence the interactive picker produces.

Example:
  rollcall submit --url "https://app.example/?id=abc" --select 3,5`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

// sampleCmd prints the bundled roster
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the bundled sample roster as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&launchURL, "url", "", "Launch URL; the session id is read from its \"id\" query parameter")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session id (overrides --url)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Record store endpoint (or set ROLLCALL_ENDPOINT)")

	addShowFlags(showCmd)
	addSubmitFlags(submitCmd)

	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(sampleCmd)
}

func addShowFlags(c *cobra.Command) {
	c.Flags().StringSlice("select", nil, "Record ids to treat as selected")
	c.Flags().String("search", "", "Name search text")
	c.Flags().String("group", "none", "Group by: none, rank, appt, subunit2")
	c.Flags().String("format", "text", "Output format: text, json")
}

func addSubmitFlags(c *cobra.Command) {
	c.Flags().StringSlice("select", nil, "Record ids to submit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
