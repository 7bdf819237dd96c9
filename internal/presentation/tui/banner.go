package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`                       _ _`,
	`  ___  ___ _ __   __ _| (_) ___ _ __`,
	` / _ \/ __| '_ \ / _' | | |/ _ \ '__|`,
	`|  __/\__ \ |_) | (_| | | |  __/ |`,
	` \___||___/ .__/ \__,_|_|_|\___|_|`,
	`          |_|`,
}

// Indigo to rose, one colour per line.
var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the espalier banner to w, coloured when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
