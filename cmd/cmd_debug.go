// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/campusql/campusql/config"
	"github.com/campusql/campusql/debug"
	"github.com/campusql/campusql/spatial"
	"github.com/campusql/campusql/store"
)

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "dev tools for inspecting a stored dataset",
}

var debugExportCmd = &cobra.Command{
	Use:   "export <id> <sql>",
	Short: "load a dataset into an ephemeral DuckDB and run a SQL query against it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, sqlText := args[0], args[1]

		cfg := config.FromFlags(cmd.Flags())

		ds, err := store.New(cfg.StoreRoot).Load(id)
		if err != nil {
			return err
		}

		db, err := debug.ExportDataset(ds)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := debug.Query(db, sqlText)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(string(out))

		return nil
	},
}

var debugH3Cmd = &cobra.Command{
	Use:   "h3 <rooms-dataset-id> [resolution]",
	Short: "bucket a rooms dataset's coordinates into an H3 cell histogram",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := 7
		if len(args) == 2 {
			if _, err := fmt.Sscanf(args[1], "%d", &res); err != nil {
				return fmt.Errorf("parsing resolution: %w", err)
			}
		}

		cfg := config.FromFlags(cmd.Flags())

		ds, err := store.New(cfg.StoreRoot).Load(args[0])
		if err != nil {
			return err
		}

		buckets, err := debug.H3Histogram(ds.Rooms, res)
		if err != nil {
			return err
		}

		for _, b := range buckets {
			fmt.Printf("%s\t%d\n", b.Cell, b.Count)
		}

		return nil
	},
}

var debugNearestCmd = &cobra.Command{
	Use:   "nearest <rooms-dataset-id> <lat> <lon>",
	Short: "find the room in a rooms dataset nearest a coordinate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parsing lat: %w", err)
		}

		lon, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("parsing lon: %w", err)
		}

		cfg := config.FromFlags(cmd.Flags())

		ds, err := store.New(cfg.StoreRoot).Load(args[0])
		if err != nil {
			return err
		}

		if len(ds.Rooms) == 0 {
			return fmt.Errorf("dataset %q has no rooms", args[0])
		}

		idx, meters := spatial.NearestRoom(spatial.Point{Lat: lat, Lng: lon}, ds.Rooms)
		r := ds.Rooms[idx]

		fmt.Printf("%s\t%.1fm\n", r.Name, meters)

		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugExportCmd, debugH3Cmd, debugNearestCmd)
	rootCmd.AddCommand(debugCmd)
}
