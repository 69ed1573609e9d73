package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

func newGetCmd(opts *options) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print a parameter value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				want := registry.TypeNone
				if typeName != "" {
					if want, err = registry.ParseType(typeName); err != nil {
						return err
					}
				}
				v, err := a.registry.GetTyped(p, want)
				if err != nil {
					return err
				}
				text, err := registry.FormatString(v)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "fail unless the parameter has this type")
	return cmd
}

func newSetCmd(opts *options) *cobra.Command {
	var (
		typeName string
		save     bool
		commit   bool
	)
	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Write a parameter value",
		Long: `Write a parameter value, converting it to the parameter's type.

With --type the value is first parsed as that type. The parameter is saved
to the save destination unless --save=false, and committed with --commit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				v := registry.StringValue(args[1])
				if typeName != "" {
					t, err := registry.ParseType(typeName)
					if err != nil {
						return err
					}
					if v, err = registry.ParseValue(t, args[1]); err != nil {
						return err
					}
				}
				if err := a.registry.Set(p, v); err != nil {
					return err
				}
				if save && a.cfg.Storage.SaveDestination != "" {
					if err := a.registry.Save(cmd.Context(), p); err != nil {
						return err
					}
				}
				if commit {
					return a.registry.Commit(cmd.Context(), p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "parse the value as this type first")
	cmd.Flags().BoolVar(&save, "save", true, "save the parameter after setting it")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the parameter's instance after setting it")
	return cmd
}

func newCommitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "commit [path]",
		Short: "Run commit handlers for a subtree (default: everything)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				return a.registry.Commit(cmd.Context(), p)
			})
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Print the tree under a path",
		Long: `Print the tree under a path, one node per line.

--depth 1 prints only the path itself, 0 (the default) the whole subtree,
and n > 1 descends n-1 levels.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 {
				return fmt.Errorf("--depth must not be negative")
			}
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				err = a.registry.Export(p, depth, func(n registry.Node) error {
					name, err := a.registry.NameOf(n.Path)
					if err != nil {
						return err
					}
					if n.Kind != registry.NodeParam {
						fmt.Fprintf(tw, "%s\t%s\t%s\t\n", n.Path, name, n.Kind)
						return nil
					}
					text, err := registry.FormatString(n.Value)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.Path, name, n.Value.Type, text)
					return nil
				})
				if flushErr := tw.Flush(); err == nil {
					err = flushErr
				}
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "levels to descend (0 = all)")
	return cmd
}

func newLoadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load [path]",
		Short: "Load a subtree from the load sources and report what changed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				loaded := 0
				a.registry.OnChange(func(registry.Path, registry.Value) { loaded++ })
				if err := a.registry.Load(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d values under %s\n", loaded, p)
				return nil
			})
		},
	}
}

func newSaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "save [path]",
		Short: "Save a subtree to the save destination",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				p, err := a.resolve(args)
				if err != nil {
					return err
				}
				if err := a.registry.Save(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", p, a.cfg.Storage.SaveDestination)
				return nil
			})
		},
	}
}
