package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"aircheck/internal/config"
	"aircheck/internal/store"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "List tracked segments from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFlags(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withJournal(func(_ *config.Config, journal *store.Store) error {
				records, err := journal.List(cmd.Context(), statuses...)
				if err != nil {
					return fmt.Errorf("list segments: %w", err)
				}
				writeSegments(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFlags, "status", nil,
		"Filter by status (recording, closed, placed, duplicate, unmatched, failed)")
	return cmd
}

func parseStatusFlags(values []string) ([]store.Status, error) {
	statuses := make([]store.Status, 0, len(values))
	for _, value := range values {
		status, ok := store.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func writeSegments(out io.Writer, records []*store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No segments tracked")
		return
	}
	rows := segmentRows(records)
	if isTerminal(out) {
		fmt.Fprintln(out, renderSegmentsTable(rows))
		return
	}
	fmt.Fprintln(out, strings.Join(segmentHeaders, "\t"))
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}

var segmentHeaders = []string{"ID", "Filename", "Status", "Updated", "Error"}

func segmentRows(records []*store.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			record.Filename,
			string(record.Status),
			record.UpdatedAt.Local().Format(time.DateTime),
			record.ErrorMessage,
		})
	}
	return rows
}

func renderSegmentsTable(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(segmentHeaders))
	for i, h := range segmentHeaders {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}
	// Only the ID column wants right alignment; everything else is text.
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
