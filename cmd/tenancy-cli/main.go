package main

import (
	"github.com/spf13/cobra"

	"github.com/go-tenancy/tenancy/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "tenancy-cli",
	Short: "tenancy cli is a command line tool",
	Long:  "tenancy cli is a command line tool",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
