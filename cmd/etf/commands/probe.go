package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "逐项检测上游数据源",
	Long: `对行情、估值、周线、净值四个上游端点各发起一次请求,
报告可用性与耗时。启用的可选依赖 (Redis / Postgres 归档)
一并检测。

Example:
  go run ./cmd/etf probe`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	st, err := initStack()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("=== 数据源检测: %s (%s) ===\n\n", st.cfg.Instrument.Name, st.cfg.Instrument.ID)

	failures := 0

	started := time.Now()
	quote, err := st.provider.GetQuote(ctx)
	if err != nil {
		failures++
		fmt.Printf("  ❌ quote      %v\n", err)
	} else {
		fmt.Printf("  ✅ quote      %.3f @ %s (%dms)\n",
			quote.Price, quote.Timestamp, time.Since(started).Milliseconds())
	}

	started = time.Now()
	valuation, err := st.provider.GetValuation(ctx)
	switch {
	case err != nil:
		failures++
		fmt.Printf("  ❌ valuation  %v\n", err)
	case !valuation.Usable():
		fmt.Printf("  ✅ valuation  no estimate published (%dms)\n",
			time.Since(started).Milliseconds())
	default:
		fmt.Printf("  ✅ valuation  %.4f (%dms)\n",
			valuation.Value, time.Since(started).Milliseconds())
	}

	started = time.Now()
	bars, err := st.provider.GetWeeklyHistory(ctx)
	if err != nil {
		failures++
		fmt.Printf("  ❌ history    %v\n", err)
	} else {
		fmt.Printf("  ✅ history    %d bars, last %s (%dms)\n",
			len(bars), bars[len(bars)-1].Date, time.Since(started).Milliseconds())
	}

	started = time.Now()
	nav, err := st.provider.GetNavByDate(ctx)
	if err != nil {
		failures++
		fmt.Printf("  ❌ nav        %v\n", err)
	} else {
		fmt.Printf("  ✅ nav        %d dates (%dms)\n",
			len(nav), time.Since(started).Milliseconds())
	}

	if st.cfg.Archive.Enabled {
		if err := st.db.Ping(ctx); err != nil {
			failures++
			fmt.Printf("  ❌ archive    %v\n", err)
		} else {
			fmt.Println("  ✅ archive    reachable")
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d source(s) unavailable", failures)
	}

	fmt.Println("\n✅ All sources reachable")
	return nil
}
