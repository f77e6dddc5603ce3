package report

import (
	"fmt"
	"strings"
)

// RenderCSV renders the leaderboard rows as a CSV string.
func RenderCSV(rows []LeaderboardRow) string {
	var sb strings.Builder

	sb.WriteString("rank,wallet,degen_score,score_delta,total_trades,total_volume,")
	sb.WriteString("realized_pnl,win_rate,rugs_caught,moonshots,last_recorded\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%.4f,%.4f,%d,%.6f,%.6f,%.4f,%d,%d,%d\n",
			r.Rank,
			r.Wallet,
			r.DegenScore,
			r.ScoreDelta,
			r.TotalTrades,
			r.TotalVolume,
			r.RealizedPnL,
			r.WinRate,
			r.RugsCaught,
			r.Moonshots,
			r.LastRecorded,
		))
	}

	return sb.String()
}
