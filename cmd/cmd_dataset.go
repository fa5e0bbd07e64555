// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campusql/campusql/config"
	"github.com/campusql/campusql/facade"
	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
	"github.com/campusql/campusql/store"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "manage stored datasets",
}

var datasetAddCmd = &cobra.Command{
	Use:   "add <id> <sections|rooms> <archive.zip>",
	Short: "ingest an archive into a new dataset",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, archivePath := args[0], model.Kind(args[1]), args[2]

		cfg := config.FromFlags(cmd.Flags())

		if cfg.MaxArchiveBytes > 0 {
			info, err := os.Stat(archivePath)
			if err != nil {
				return fmt.Errorf("reading archive: %w", err)
			}

			if info.Size() > cfg.MaxArchiveBytes {
				return query.New(query.InvalidContent, fmt.Sprintf("archive exceeds the maximum accepted size of %d bytes", cfg.MaxArchiveBytes))
			}
		}

		raw, err := os.ReadFile(archivePath)
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		payload := base64.StdEncoding.EncodeToString(raw)

		f := facade.New(store.New(cfg.StoreRoot), geocoderFromConfig(cfg), ingest.Options{MaxProcs: cfg.IngestMaxProcs})

		ids, err := f.AddDataset(context.Background(), id, kind, payload)
		if err != nil {
			return err
		}

		fmt.Println(ids)

		return nil
	},
}

var datasetRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "remove a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromFlags(cmd.Flags())
		f := facade.New(store.New(cfg.StoreRoot), nil, ingest.Options{})

		removed, err := f.RemoveDataset(args[0])
		if err != nil {
			return err
		}

		fmt.Println(removed)

		return nil
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "ls",
	Short: "list stored datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromFlags(cmd.Flags())
		f := facade.New(store.New(cfg.StoreRoot), nil, ingest.Options{})

		summaries, err := f.ListDatasets()
		if err != nil {
			return err
		}

		for _, s := range summaries {
			fmt.Printf("%s\t%s\t%d rows\n", s.ID, s.Kind, s.NumRows)
		}

		return nil
	},
}

func init() {
	datasetCmd.AddCommand(datasetAddCmd, datasetRemoveCmd, datasetListCmd)
	rootCmd.AddCommand(datasetCmd)
}
