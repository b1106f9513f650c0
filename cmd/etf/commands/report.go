package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "同步行情并输出判定报告",
	Long: `同步最新行情并输出综合判定。

逐行列出当前时点与最近 50 周的判定:收盘价、溢价率、M20、
盈亏以及四条规则的综合结论。传入买入成本与数量后附带盈亏列。

Example:
  go run ./cmd/etf report
  go run ./cmd/etf report --cost 1.234 --qty 1000
  go run ./cmd/etf report --json`,
	RunE: runReport,
}

var (
	reportCost float64
	reportQty  int
	reportJSON bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags
	reportCmd.Flags().Float64Var(&reportCost, "cost", 0, "买入成本 (单价)")
	reportCmd.Flags().IntVar(&reportQty, "qty", 0, "买入数量")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "输出 JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportCost < 0 || reportQty < 0 {
		return fmt.Errorf("cost and qty must be non-negative")
	}

	st, err := initStack()
	if err != nil {
		return err
	}
	defer st.Close()

	// One-shot run: every source is fetched exactly once, so the
	// refresher rides the uncached provider chain.
	assembler := report.NewAssembler(st.rules, st.instrument(), st.log)
	refresher := report.NewRefresher(st.provider, assembler, st.log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	basis := contracts.CostBasis{UnitCost: reportCost, Quantity: reportQty}
	rep := refresher.Refresh(ctx, basis)

	if reportJSON {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if !rep.Available() {
		return fmt.Errorf("report unavailable: %s", rep.StatusReason)
	}

	printReport(rep)
	return nil
}

func printReport(rep *contracts.Report) {
	fmt.Println()
	fmt.Printf("  %s (%s)\n", rep.Instrument.Name, rep.Instrument.ID)
	fmt.Printf("  生成时间 : %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  状态     : %s\n", rep.Status)
	if rep.StatusReason != "" {
		fmt.Printf("  说明     : %s\n", rep.StatusReason)
	}

	s := rep.Summary
	fmt.Printf("  现价 %s   溢价率 %s%%   M20 %s   判定 %s\n",
		fmtNum(s.Price, true, 3),
		fmtNum(s.PremiumPct, s.HasPremium, 3),
		fmtNum(s.M20, s.HasM20, 3),
		passMark(s.Passed))
	fmt.Printf("  近 %d 周通过 %d 周\n", len(rep.Records), rep.PassedCount())
	fmt.Println()

	fmt.Printf("%-21s %9s %9s %9s %9s %11s %4s  %s\n",
		"时间", "收盘", "溢价%", "M20", "盈亏%", "M20处盈亏%", "判定", "原因")

	for i := range rep.Records {
		r := &rep.Records[i]

		label := r.PeriodLabel
		if r.IsRealtime {
			label = "* " + label
		}

		fmt.Printf("%-21s %9s %9s %9s %9s %11s %4s  %s\n",
			label,
			fmtNum(r.Price, true, 3),
			fmtNum(r.PremiumPct, r.HasPremium, 3),
			fmtNum(r.M20, r.HasM20, 3),
			fmtNum(r.ProfitPct, r.HasProfit, 2),
			fmtNum(r.ProfitVsM20Pct, r.HasProfitVsM20, 2),
			passMark(r.Passed),
			r.ReasonText())
	}
}

// fmtNum renders a numeric cell, "-" when the value is absent.
func fmtNum(v float64, ok bool, prec int) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func passMark(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}
