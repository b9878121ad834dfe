package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/dxir"
)

var printCmd = &cobra.Command{
	Use:   "print module_file",
	Short: "disassemble a module to readable text.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		module := readModule(args[0])
		fmt.Print(dxir.Print(module))
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}
