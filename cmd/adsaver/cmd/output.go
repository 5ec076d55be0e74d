package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/domain/combo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// countPrinter groups digits in counts: 12,345 keywords.
var countPrinter = message.NewPrinter(language.English)

func paint(on bool, code, s string) string {
	if !on {
		return s
	}
	return code + s + colorReset
}

// notice formats a one-line warning.
func notice(color bool, msg string) string {
	return paint(color, colorYellow, "! "+msg) + "\n"
}

// formatSummary formats the line printed after a generation.
//
//	⚡ 1,204 keywords │ 602 unique │ pairs-from-1-2 │ broad,exact │ alpha-asc │ 3ms
func formatSummary(g generation, cfg combo.Config, key combo.SortKey, color bool) string {
	parts := []string{
		paint(color, colorBold, "⚡ "+countPrinter.Sprintf("%d keywords", len(g.keywords))),
		countPrinter.Sprintf("%d unique", g.unique),
	}
	if g.excluded > 0 {
		parts = append(parts, countPrinter.Sprintf("%d excluded", g.excluded))
	}
	parts = append(parts,
		paint(color, colorCyan, cfg.Mode.String()),
		strings.Join(cfg.MatchTypes.Names(), ","),
		key.String(),
		g.elapsed.Round(time.Microsecond).String(),
	)
	return strings.Join(parts, " │ ") + "\n"
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult, port string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ adsaver daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:       %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(countPrinter.Sprintf("  Generations:  %d\n", h.Generations))
	sb.WriteString(countPrinter.Sprintf("  Last result:  %d keywords\n", h.LastCount))
	sb.WriteString(fmt.Sprintf("  Campaigns:    %d\n", h.Campaigns))
	sb.WriteString(fmt.Sprintf("  Uptime:       %s\n", h.Uptime))
	if port != "" {
		sb.WriteString(fmt.Sprintf("  Web UI:       http://localhost:%s\n", port))
	}
	return sb.String()
}

// formatLists formats a ListsResult: campaign names, or list summaries.
func formatLists(p socket.ListsParams, res *socket.ListsResult) string {
	var sb strings.Builder
	if p.Campaign == "" {
		sb.WriteString(fmt.Sprintf("%s⚡ %d campaigns%s\n", colorBold, res.Count, colorReset))
		for _, c := range res.Campaigns {
			sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorCyan, c, colorReset))
		}
		return sb.String()
	}

	scope := p.Campaign
	if p.AdGroup != "" {
		scope += "/" + p.AdGroup
	}
	sb.WriteString(fmt.Sprintf("%s⚡ %d lists%s │ %s\n", colorBold, res.Count, colorReset, scope))
	for _, l := range res.Lists {
		sb.WriteString(fmt.Sprintf("  %s%s%s  %s  %s  %s%s%s\n",
			colorCyan, l.AdGroup, colorReset,
			l.Name,
			countPrinter.Sprintf("%d keywords", l.Count),
			colorGray, l.ID, colorReset))
	}
	return sb.String()
}
