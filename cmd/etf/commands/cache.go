package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asherrising888-debug/NasdaqETF/internal/market"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "查看/清理行情缓存",
	Long: `查看或清理四类行情缓存 (quote / valuation / history / nav)。

内存缓存随 serve 进程生存,跨进程只有 Redis 缓存可操作。

Subcommands:
  show   - 查看各缓存键是否命中
  clear  - 删除全部缓存键

Example:
  go run ./cmd/etf cache show
  go run ./cmd/etf cache clear`,
}

var (
	cacheShowCmd = &cobra.Command{
		Use:   "show",
		Short: "查看缓存状态",
		RunE:  runCacheShow,
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "清空缓存",
		RunE:  runCacheClear,
	}
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func cacheKinds() []string {
	return []string{market.KindQuote, market.KindValuation, market.KindHistory, market.KindNav}
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	st, err := initStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if !st.cfg.Redis.Enabled {
		fmt.Println("ℹ️  Redis disabled; the in-memory cache lives inside the serve process")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, kind := range cacheKinds() {
		key := market.Key(kind, st.cfg.Instrument.ID)

		var raw json.RawMessage
		hit, err := st.store.Get(ctx, key, &raw)
		switch {
		case err != nil:
			fmt.Printf("  ❌ %-10s %v\n", kind, err)
		case hit:
			fmt.Printf("  ✅ %-10s cached (%d bytes)\n", kind, len(raw))
		default:
			fmt.Printf("  -  %-10s empty\n", kind)
		}
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	st, err := initStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if !st.cfg.Redis.Enabled {
		fmt.Println("ℹ️  Redis disabled; the in-memory cache lives inside the serve process")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, kind := range cacheKinds() {
		key := market.Key(kind, st.cfg.Instrument.ID)
		if err := st.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	fmt.Printf("✅ Cleared %d cache keys\n", len(cacheKinds()))
	return nil
}
