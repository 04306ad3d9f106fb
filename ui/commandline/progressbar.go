// Copyright 2025-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline displays the progress and the outcome of a tile
// configuration search on the terminal. It attaches to a search.Searcher
// through its hooks, so the engine itself stays free of any UI concern.
package commandline

import (
	"fmt"

	"github.com/gomlx/autotile/search"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version; consider
// progressbar.ThemeUnicode for a prettier one where the graphical symbols are
// supported.
var ProgressbarStyle = progressbar.ThemeASCII

// AttachProgressBar attaches a terminal progress bar to the searcher, updated
// as buckets reach a terminal state. Long measured searches are slow; this is
// the feedback that something is happening.
func AttachProgressBar(searcher *search.Searcher) {
	var bar *progressbar.ProgressBar
	searcher.OnStart("progressbar", 100, func(_ *search.Searcher, numBuckets int) error {
		bar = progressbar.NewOptions(numBuckets,
			progressbar.OptionSetDescription("Tuning"),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("buckets"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(ProgressbarStyle),
		)
		return nil
	})
	searcher.OnBucket("progressbar", 100, func(_ *search.Searcher, b *search.Bucket) error {
		if bar == nil || !b.State.IsTerminal() {
			return nil
		}
		return bar.Add(1)
	})
	searcher.OnEnd("progressbar", 100, func(_ *search.Searcher, _ *search.Result) error {
		if bar == nil {
			return nil
		}
		err := bar.Finish()
		fmt.Println()
		return err
	})
}
