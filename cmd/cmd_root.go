// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusql/campusql/config"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "campusql",
	Short: "analytical data service for course sections and campus rooms",
	Long: `
campusql ingests course-section and campus-room archives, persists them as
datasets, and answers a structured JSON query language over them — as a
standalone HTTP service, or directly from this CLI.
`,
}

func init() {
	config.BindPersistentFlags(rootCmd.PersistentFlags())
}

var Version = "dev"

func Execute(version string) {
	Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
