package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ragstack",
	Short: "Bring up the chat-archive RAG stack in dependency order",
	Long: `ragstack starts the services of the retrieval-augmented question
answering stack (the vector database, the answering API, and the web UI)
in dependency order: each service is only started once everything before
it in the configured order has reported ready.

A service that never becomes ready within its probe budget aborts the
bring-up; services started earlier are left running.`,
	// SilenceUsage prevents printing the usage message on errors we handle
	// ourselves (failed bring-ups, unreachable services).
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ragstack version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
