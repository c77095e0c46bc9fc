// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package view

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// WriteTable writes the page as text.
func WriteTable(w io.Writer, page Page) error {
	switch {
	case page.Spinner:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case page.Error != "":
		_, err := fmt.Fprintf(w, "Error: %s\n", page.Error)
		return err
	}

	if page.Account != "" {
		if _, err := fmt.Fprintf(w, "Account:   %s\n", page.Account); err != nil {
			return err
		}
	}
	if b := page.Balance; b != nil {
		_, err := fmt.Fprintf(w, "Balance:   %s\nSpendable: %s\nLocked:    %s\n\n", b.Balance, b.Spendable, b.Locked)
		if err != nil {
			return err
		}
	}

	if page.TableSpinner {
		_, err := fmt.Fprintln(w, "Loading vestings...")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Amount", "Start", "Recipient", "Proof"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range page.Rows {
		table.Append([]string{
			strconv.FormatUint(row.ID, 10),
			row.Amount,
			row.Start,
			row.Recipient,
			row.Proof,
		})
	}
	table.Render()
	return nil
}
