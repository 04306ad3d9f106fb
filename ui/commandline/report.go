// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/autotile/search"
)

var (
	reportTitleStyle  = lipgloss.NewStyle().Bold(true)
	reportBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// SearchReport renders the outcome of a search as a table: the winning tile
// size per axis, the score, and the search tallies.
func SearchReport(result *search.Result) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(reportBorderStyle).
		Headers("Axis", "Bucket", "Best Tile")
	for ii, d := range result.Bucket {
		kind := "static"
		if d.Dynamic {
			kind = "dynamic"
		}
		table.Row(d.Tag,
			fmt.Sprintf("[%d, %d] %s", d.Lower, d.Upper, kind),
			humanize.Comma(int64(result.Best.Tiles[ii])))
	}

	var sb strings.Builder
	sb.WriteString(reportTitleStyle.Render("Best tile configuration"))
	sb.WriteString("\n")
	sb.WriteString(table.Render())
	sb.WriteString("\n")
	_, _ = fmt.Fprintf(&sb, "Score: %g (lower is better)\n", result.Best.Score)
	_, _ = fmt.Fprintf(&sb, "Buckets: %s evaluated, %s failed, in %s\n",
		humanize.Comma(int64(result.Evaluated)), humanize.Comma(int64(result.Failed)),
		result.Elapsed.Round(time.Millisecond))
	return sb.String()
}
