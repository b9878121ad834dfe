package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/dxir"
)

var validateCmd = &cobra.Command{
	Use:   "validate module_file",
	Short: "check a module for structural and opcode-level errors.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		module := readModule(args[0])
		if err := dxir.Validate(module); err != nil {
			fmt.Fprintf(os.Stderr, "%s:\n%v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("%s: ok\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
