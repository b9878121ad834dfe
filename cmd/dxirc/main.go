// Command dxirc is the dxir module tool.
//
// Usage:
//
//	dxirc transform -o out.json shader.json   # rewrite output stores
//	dxirc print shader.json                   # disassemble
//	dxirc validate shader.json                # check structure
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dxirc",
	Short: "Tool for inspecting and transforming dxir shader modules.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}
