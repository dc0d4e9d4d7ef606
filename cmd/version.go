package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ragstack",
		Long:  `All software has versions. This is ragstack's.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ragstack version %s\n", rootCmd.Version)
		},
	}
}
