// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/campusql/campusql/config"
	"github.com/campusql/campusql/facade"
	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/query"
	"github.com/campusql/campusql/store"
)

var queryCmd = &cobra.Command{
	Use:   "query [file.json]",
	Short: "run a query document against a stored dataset, reading it from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			r   io.Reader
			err error
		)

		if len(args) > 0 {
			r, err = os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening query file: %w", err)
			}
		} else {
			r = os.Stdin
			if isTerminal(os.Stdin) {
				fmt.Fprintln(os.Stderr, "Reading query document from stdin. Paste JSON and press Ctrl+D to finish.")
			}
		}

		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading query document: %w", err)
		}

		var q query.Query
		if err := json.Unmarshal(raw, &q); err != nil {
			return fmt.Errorf("parsing query file: %w", err)
		}

		cfg := config.FromFlags(cmd.Flags())
		f := facade.New(store.New(cfg.StoreRoot), nil, ingest.Options{})

		records, err := f.PerformQuery(q)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		fmt.Println(string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
