package main

import (
	"fmt"
	"os"

	"github.com/kadabra-ai/kadabra-runes/src/runes/app"
	"github.com/kadabra-ai/kadabra-runes/src/runes/entity"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/mcpconfig"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const _version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:     "kadabra-runes <language-server> [args...]",
		Short:   "MCP bridge exposing language server code navigation as tools",
		Version: _version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := workspace
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = wd
			}

			fx.New(app.Module(entity.ServerConfig{
				Command:       args[0],
				Args:          args[1:],
				WorkspaceRoot: root,
			})).Run()
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace root opened with the language server (defaults to the current directory)")

	cmd.AddCommand(newConfigureCmd())
	return cmd
}

func newConfigureCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "configure <language-server> [args...]",
		Short: "Register this bridge in the project's .mcp.json",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := dir
			if target == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				target = wd
			}

			self, err := os.Executable()
			if err != nil {
				return err
			}
			if err := mcpconfig.Configure(fs.New(), target, self, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configured kadabra-runes in %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory holding .mcp.json (defaults to the current directory)")
	return cmd
}
