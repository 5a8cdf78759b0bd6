package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inamate/regionedit/internal/config"
	"github.com/inamate/regionedit/internal/configstore"
)

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "Store backend: file, redis or postgres (default STORE_BACKEND)")
	cmd.Flags().String("data-dir", "", "File store directory (default DATA_DIR)")
}

// openStore resolves store settings from the environment, then flags.
func openStore(cmd *cobra.Command) (configstore.Store, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opts := configstore.Options{
		Backend:       cfg.StoreBackend,
		DataDir:       cfg.DataDir,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DatabaseURL:   cfg.DatabaseURL,
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		opts.Backend = b
	}
	if d, _ := cmd.Flags().GetString("data-dir"); d != "" {
		opts.DataDir = d
	}
	return configstore.Open(cmd.Context(), opts)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <prefix> <node-id>",
		Short: "Print the stored config of a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entry, err := store.Load(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("load %s/%s: %w", args[0], args[1], err)
			}
			return emit(cmd, entryView(entry))
		},
	}
	addStoreFlags(cmd)
	return cmd
}

// entryView decodes the raw config so yaml output shows a document instead
// of bytes.
func entryView(e *configstore.Entry) map[string]any {
	var config any
	if err := json.Unmarshal(e.Config, &config); err != nil {
		config = string(e.Config)
	}
	return map[string]any{
		"revision":  e.Revision,
		"node_id":   e.NodeID,
		"timestamp": e.Timestamp,
		"config":    config,
	}
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <prefix>",
		Short: "List node ids with a stored config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(cmd, ids)
		},
	}
	addStoreFlags(cmd)
	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <prefix> [node-id]",
		Short: "Remove one stored config, or every config under a prefix",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 2 {
				if err := store.Delete(cmd.Context(), args[0], args[1]); err != nil {
					return fmt.Errorf("delete %s/%s: %w", args[0], args[1], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s/%s\n", args[0], args[1])
				return nil
			}
			n, err := store.Clear(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d config(s) under %s\n", n, args[0])
			return nil
		},
	}
	addStoreFlags(cmd)
	return cmd
}
