package main

import (
	"fmt"
	"strconv"
	"time"

	"aria/internal/config"
)

// resolveSource matches a command-line argument against configured sources
// by name first, then by numeric id.
func resolveSource(cfg *config.Config, arg string) (config.Source, error) {
	for _, src := range cfg.Sources {
		if src.Name == arg {
			return src, nil
		}
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if src, ok := cfg.SourceByID(id); ok {
			return src, nil
		}
	}
	return config.Source{}, fmt.Errorf("no configured source matches %q", arg)
}

// formatTrackDuration renders a per-track length as m:ss.
func formatTrackDuration(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	total := millis / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// formatTotalDuration renders an aggregate length in coarse units.
func formatTotalDuration(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	d := time.Duration(millis) * time.Millisecond
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func sourceLocation(src config.Source) string {
	if src.Kind == config.SourceRemote {
		return src.Address
	}
	return src.Path
}
