package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"soundboard/internal/engine"
)

// listSeparator joins device entries in get_inputs and get_outputs replies.
const listSeparator = "; "

type column struct {
	title string
	align text.Align
}

var (
	inputColumns  = []column{{"Name", text.AlignLeft}, {"Description", text.AlignLeft}}
	outputColumns = []column{{"Name", text.AlignLeft}}
	layerColumns  = []column{
		{"Layer", text.AlignRight},
		{"State", text.AlignLeft},
		{"Volume", text.AlignRight},
		{"File", text.AlignLeft},
		{"Position", text.AlignRight},
		{"Duration", text.AlignRight},
	}
)

// renderTable draws rows in the rounded style. Header titles are printed as
// written; short rows are padded with blanks.
func renderTable(columns []column, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
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

func renderState(cmd *cobra.Command, message string) error {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		fmt.Fprintln(out, message)
		return nil
	}
	fmt.Fprintln(out, unquoteState(message))
	return nil
}

// unquoteState turns the JSON-encoded state into its bare name.
func unquoteState(message string) string {
	var state string
	if err := json.Unmarshal([]byte(message), &state); err != nil {
		return message
	}
	return state
}

func renderInputs(cmd *cobra.Command, message string) error {
	return writeInputs(cmd.OutOrStdout(), message, isTerminal(cmd.OutOrStdout()))
}

func writeInputs(out io.Writer, message string, tty bool) error {
	if !tty {
		fmt.Fprintln(out, message)
		return nil
	}
	var rows [][]string
	for _, entry := range splitList(message) {
		name, nick, _ := strings.Cut(entry, " - ")
		rows = append(rows, []string{name, nick})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No input devices found")
		return nil
	}
	fmt.Fprintln(out, renderTable(inputColumns, rows))
	return nil
}

func renderOutputs(cmd *cobra.Command, message string) error {
	return writeOutputs(cmd.OutOrStdout(), message, isTerminal(cmd.OutOrStdout()))
}

func writeOutputs(out io.Writer, message string, tty bool) error {
	if !tty {
		fmt.Fprintln(out, message)
		return nil
	}
	var rows [][]string
	for _, name := range splitList(message) {
		rows = append(rows, []string{name})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No output devices found")
		return nil
	}
	fmt.Fprintln(out, renderTable(outputColumns, rows))
	return nil
}

func splitList(message string) []string {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	return strings.Split(message, listSeparator)
}

func renderLayers(cmd *cobra.Command, message string) error {
	return writeLayers(cmd.OutOrStdout(), message, isTerminal(cmd.OutOrStdout()))
}

func writeLayers(out io.Writer, message string, tty bool) error {
	if !tty {
		fmt.Fprintln(out, message)
		return nil
	}
	var layers []engine.LayerInfo
	if err := json.Unmarshal([]byte(message), &layers); err != nil {
		return fmt.Errorf("decode layers: %w", err)
	}
	rows := make([][]string, 0, len(layers))
	for _, l := range layers {
		duration := "-"
		if d, ok := l.Duration.Get(); ok {
			duration = formatSeconds(d)
		}
		rows = append(rows, []string{
			strconv.Itoa(l.Index),
			l.State.String(),
			formatSeconds(l.Volume),
			l.CurrentFile.OrElse("-"),
			formatSeconds(l.Position),
			duration,
		})
	}
	fmt.Fprintln(out, renderTable(layerColumns, rows))
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
