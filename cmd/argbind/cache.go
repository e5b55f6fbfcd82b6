package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"argbind/internal/driver"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the decoded program cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove every cached program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, err := driver.OpenProgramCache(a.cfg.Cache.Dir)
			if err != nil {
				return err
			}
			if err := cache.DropAll(); err != nil {
				return fmt.Errorf("failed to clean %s: %w", cache.Dir(), err)
			}
			if !a.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", cache.Dir())
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := a.cfg.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = driver.DefaultCacheDir(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})
	return cmd
}
