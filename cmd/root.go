package cmd

import (
	"fmt"
	"os"

	"github.com/melosbot/telegram-chat-organizer/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	workDir string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command; running it starts the wizard.
var rootCmd = &cobra.Command{
	Use:   "telegram-chat-organizer",
	Short: "Reorganize Telegram chats into folders with AI-assisted classification",
	Long: `An interactive wizard that sorts your Telegram chats into folders.

The wizard reads your folders and chats, asks an AI provider (OpenAI or
Gemini compatible) for a classification draft, and walks you through
reviewing, editing, and validating that draft before anything touches your
folders. The draft lives in a JSON file you can edit by hand or through a
spreadsheet-friendly CSV; every destructive step asks first.

Configuration comes from the environment (or a .env file in the working
directory): AI_PROVIDER selects the backend, OPENAI_API_KEY or
GEMINI_API_KEY authenticates it.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd.Context(), workDir)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&workDir, "workdir", ".", "Working directory for .env, data and logs")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
