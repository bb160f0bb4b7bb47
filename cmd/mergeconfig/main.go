// Command mergeconfig copies a base workflow file and overwrites one
// identifier in it with the value found in a second file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/va6996/travelingman-mcp/yamltree"
)

type options struct {
	base   string
	source string
	out    string
	key    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "mergeconfig",
		Short:         "Copy base.yml, taking the provider id from temp.yml",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := merge(*opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %s with %s: %s\n", opts.out, opts.key, value)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.base, "base", "b", "base.yml", "Base document to copy")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "temp.yml", "Document holding the identifier")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "Travel Agent.yml", "Output file")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "provider_id", "Key to propagate")
	return cmd
}

func merge(opts options) (string, error) {
	for _, p := range []string{opts.base, opts.source} {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s not found", p)
		}
	}

	base, err := yamltree.Load(opts.base)
	if err != nil {
		return "", err
	}
	source, err := yamltree.Load(opts.source)
	if err != nil {
		return "", err
	}

	value, ok := yamltree.FindKey(source, opts.key)
	if !ok {
		return "", fmt.Errorf("could not find %s in %s", opts.key, opts.source)
	}
	yamltree.ReplaceKey(base, opts.key, value)

	if err := yamltree.Save(opts.out, base); err != nil {
		return "", err
	}
	return value.Value, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
