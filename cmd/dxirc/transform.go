package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gogpu/dxir"
	"github.com/gogpu/dxir/ir"
)

var transformCmd = &cobra.Command{
	Use:   "transform [flags] module_file",
	Short: "rewrite a module so every written output is stored completely on every exit path.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		skipValidate, _ := cmd.Flags().GetBool("no-validate")
		output, _ := cmd.Flags().GetString("output")

		module := readModule(args[0])
		opts := dxir.TransformOptions{Validate: !skipValidate}
		changed, err := dxir.TransformWithOptions(module, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
			os.Exit(1)
		}
		if changed {
			log.Infof("%s: rewritten", module.Name)
		} else {
			log.Infof("%s: no output stores, left unchanged", module.Name)
		}

		out := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error creating %s: %v\n", output, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}
		if err := dxir.Save(out, module); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func readModule(path string) *ir.Module {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()
	module, err := dxir.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}
	return module
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringP("output", "o", "", "write the transformed module to a file (default: stdout)")
	transformCmd.Flags().Bool("no-validate", false, "skip validation before transforming")
}
