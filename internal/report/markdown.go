package report

import (
	"fmt"
	"strings"
	"time"

	"degenscore-lab/internal/walletid"
)

// RenderMarkdown renders the leaderboard as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Degen Leaderboard\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Wallets: %d\n\n", r.WalletCount))

	if len(r.Rows) == 0 {
		sb.WriteString("No wallets analyzed yet.\n")
		return sb.String()
	}

	sb.WriteString("| Rank | Wallet | Score | Change | Trades | Volume | PnL | WinRate | Rugs | Moons |\n")
	sb.WriteString("|------|--------|-------|--------|--------|--------|-----|---------|------|-------|\n")
	for _, row := range r.Rows {
		delta := "-"
		if row.ScoreDelta != 0 {
			delta = fmt.Sprintf("%+.1f", row.ScoreDelta)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %.1f | %s | %d | %.2f | %+.4f | %.1f%% | %d | %d |\n",
			row.Rank, walletid.Short(row.Wallet), row.DegenScore, delta,
			row.TotalTrades, row.TotalVolume, row.RealizedPnL, row.WinRate,
			row.RugsCaught, row.Moonshots))
	}
	sb.WriteString("\n")

	return sb.String()
}
