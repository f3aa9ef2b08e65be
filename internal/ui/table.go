package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// PrintTable writes a boxed table with a header row to w.
func PrintTable(w io.Writer, header []string, rows [][]string) error {
	table := pterm.DefaultTable
	table.Boxed = true

	data := append([][]string{header}, rows...)

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, str)

	return err
}
