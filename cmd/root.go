package cmd

import (
	"context"
	"fmt"
	"os"

	"protokoll/internal/config"
	"protokoll/internal/mcpclient"
	"protokoll/internal/output"
	"protokoll/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	debugFlag    bool
	verboseFlag  bool
	outputFormat string

	// activeConfig is loaded once per invocation by the root PersistentPreRunE.
	activeConfig = config.GetDefaultConfig()
	activeFormat = output.FormatText

	// Set from main via ldflags.
	cliVersion = "dev"
	gitInfo    = "unknown"
)

// For mocking in tests
var (
	loadConfig = config.LoadConfig
	newClient  = func(cfg config.ProtokollConfig) *mcpclient.Client {
		return mcpclient.NewConfigured(cfg, func(o *mcpclient.Options) {
			o.ClientVersion = cliVersion
		})
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protokoll",
		Short: "MCP client for transcription and context management",
		Long: `protokoll is the command line interface to a protokoll MCP server.

Every command starts the server (protokoll-mcp by default) as a child
process, calls one of its tools and prints the result. Transcripts, tasks
and context entities (projects, people, terms, companies) are managed this
way, as is audio processing.`,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. invalid arguments, failed connections)
		SilenceUsage:      true,
		PersistentPreRunE: initCommand,
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to configuration file (default: protokoll-config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, json, yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newTranscriptCmd())
	cmd.AddCommand(newContextCmd())
	for _, kind := range entityKinds {
		cmd.AddCommand(newEntityCmd(kind))
	}
	cmd.AddCommand(newActionCmd())
	cmd.AddCommand(newFeedbackCmd())
	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newSelfUpdateCmd())

	return cmd
}

// initCommand loads the configuration and sets up logging before any
// subcommand runs.
func initCommand(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	activeFormat = format

	cfg, err := loadConfig(cfgFile, config.WithDebug(debugFlag), config.WithVerbose(verboseFlag))
	if err != nil {
		return err
	}
	activeConfig = cfg

	level := logging.LevelFor(cfg.Debug, cfg.Verbose)
	if cfg.LogLevel != "" && !cfg.Debug && !cfg.Verbose {
		if level, err = logging.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("invalid logLevel setting: %w", err)
		}
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	logging.Debug("CLI", "Running %s with config from %v", cmd.CommandPath(), cfg.Sources)
	return nil
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	cliVersion = v
	rootCmd.Version = v
}

// SetBuildInfo records the git information shown by the version command.
func SetBuildInfo(info string) {
	gitInfo = info
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "protokoll version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// printerFor returns a printer writing to the command's output stream.
func printerFor(cmd *cobra.Command) *output.Printer {
	return output.New(cmd.OutOrStdout(), activeFormat)
}
