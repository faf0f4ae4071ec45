package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/feedscroll/pkg/collection"
	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/Sternrassler/feedscroll/pkg/loader"
	"github.com/mattn/go-runewidth"
)

// titleWidth is the display width of the title column.
const titleWidth = 40

// viewport is a fixed-height window over the loaded items. The sentinel row
// sits directly after the last item; it is visible once the window reaches it.
type viewport struct {
	rows   int
	offset int
	out    io.Writer

	last       collection.Snapshot
	lastOffset int
	lastStatus string
	renders    int
}

func newViewport(rows int, out io.Writer) *viewport {
	if rows < 1 {
		rows = 1
	}
	return &viewport{rows: rows, out: out, lastOffset: -1}
}

// Scroll moves the window by delta rows, clamped to [0, len].
// The window may rest past the last item so the sentinel can come into view.
func (v *viewport) Scroll(delta int, snap collection.Snapshot) {
	v.offset += delta
	if limit := snap.Len(); v.offset > limit {
		v.offset = limit
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

// SentinelVisible reports whether the sentinel row lies inside the window.
func (v *viewport) SentinelVisible(snap collection.Snapshot) bool {
	return v.offset+v.rows > snap.Len()
}

// AtBottom reports whether the last item is in view.
func (v *viewport) AtBottom(snap collection.Snapshot) bool {
	return v.offset+v.rows >= snap.Len()
}

// Render draws the window when the items, the position or the status changed.
func (v *viewport) Render(snap collection.Snapshot, state loader.State) bool {
	status := state.Status.String()
	if snap.SameAs(v.last) && v.offset == v.lastOffset && status == v.lastStatus {
		return false
	}
	v.last, v.lastOffset, v.lastStatus = snap, v.offset, status
	v.renders++

	var b strings.Builder
	fmt.Fprintf(&b, "-- page %d | %s | %d items | rows %d-%d --\n",
		state.Cursor.Page, status, snap.Len(), v.offset+1, min(v.offset+v.rows, snap.Len()))

	items := snap.Window(v.offset, v.offset+v.rows)
	for i, item := range items {
		title := runewidth.FillRight(runewidth.Truncate(item.Title, titleWidth, "..."), titleWidth)
		fmt.Fprintf(&b, "%4d  %s  %s\n", v.offset+i+1, title, item.Date)
	}
	if v.SentinelVisible(snap) {
		b.WriteString(sentinelLine(state))
	}

	fmt.Fprint(v.out, b.String())
	return true
}

func sentinelLine(state loader.State) string {
	switch state.Status {
	case feed.StatusLoading:
		return "      ... loading ...\n"
	case feed.StatusFailed:
		return fmt.Sprintf("      !! %v (press r to retry)\n", state.Err)
	case feed.StatusEnd:
		return "      -- end of feed --\n"
	default:
		return "      ...\n"
	}
}
