// cmd/urlsift/ext.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"urlsift/internal/core/usecases"
	"urlsift/internal/platform/ui"
)

func newExtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ext",
		Short: "Manage the persisted static-asset extension set",
		Long: "URLs whose path ends with one of these extensions are dropped before grouping.\n" +
			"Arguments may hold several extensions separated by spaces, commas, semicolons or newlines.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the extension set, one per line",
			Args:  cobra.NoArgs,
			RunE: a.withController(func(ctrl *usecases.Controller, _ []string) error {
				for _, ext := range ctrl.Extensions() {
					fmt.Fprintln(a.stdout, ext)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add <extensions...>",
			Short: "Add extensions to the set",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.withController(func(ctrl *usecases.Controller, args []string) error {
				n, err := ctrl.AddExtensions(strings.Join(args, "\n"))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "added %d extension(s), %d in set\n", n, len(ctrl.Extensions()))
				return nil
			}),
		},
		&cobra.Command{
			Use:     "remove <extensions...>",
			Aliases: []string{"rm"},
			Short:   "Remove extensions from the set",
			Args:    cobra.MinimumNArgs(1),
			RunE: a.withController(func(ctrl *usecases.Controller, args []string) error {
				n, err := ctrl.RemoveExtensions(strings.Join(args, "\n"))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "removed %d extension(s), %d in set\n", n, len(ctrl.Extensions()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the set (no URL is dropped by extension)",
			Args:  cobra.NoArgs,
			RunE: a.withController(func(ctrl *usecases.Controller, _ []string) error {
				if err := ctrl.ClearExtensions(); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, "extension set cleared")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default extensions",
			Args:  cobra.NoArgs,
			RunE: a.withController(func(ctrl *usecases.Controller, _ []string) error {
				if err := ctrl.ResetExtensions(a.cfg.Extensions.Defaults); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "extension set reset to %s\n", strings.Join(ctrl.Extensions(), " "))
				return nil
			}),
		},
	)

	return cmd
}

// withController adapts fn to a cobra RunE that builds and closes the controller.
func (a *app) withController(fn func(ctrl *usecases.Controller, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		logger := a.newLogger(ui.ModeRaw)

		ctrl, err := a.newController(logger)
		if err != nil {
			return failed(err)
		}
		defer ctrl.Close()

		if err := fn(ctrl, args); err != nil {
			return failed(err)
		}
		return nil
	}
}
