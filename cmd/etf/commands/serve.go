package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/asherrising888-debug/NasdaqETF/internal/api"
	"github.com/asherrising888-debug/NasdaqETF/internal/api/handlers"
	"github.com/asherrising888-debug/NasdaqETF/internal/report"
	"github.com/asherrising888-debug/NasdaqETF/internal/scheduler"
	"github.com/asherrising888-debug/NasdaqETF/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动看板与 API 服务",
	Long: `启动 HTTP 服务:内嵌看板页面、JSON API 与 WebSocket 推送。

报告不做后台刷新,只在用户点击"同步最新数据"或调用
refresh 接口时重新计算。

Endpoints:
  GET  /                    - 看板页面
  GET  /health              - Health check
  GET  /api/report          - 最近一次判定报告
  POST /api/report/refresh  - 同步行情并重新判定 (?cost=&qty=)
  GET  /api/summary         - 当前判定概要
  GET  /ws                  - 报告推送通道

Example:
  go run ./cmd/etf serve
  go run ./cmd/etf serve --port 8089`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP 端口 (默认 $PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== 纳指ETF 周线决策看板 ===")

	// 1. Wire market data dependencies
	st, err := initStack()
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, log := st.cfg, st.log
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Report pipeline over the cached gateway
	assembler := report.NewAssembler(st.rules, st.instrument(), log)
	refresher := report.NewRefresher(st.gateway, assembler, log)

	// 3. Handlers and push channel
	hub := handlers.NewHub(log)
	reportHandler := handlers.NewReportHandler(refresher, hub, log)
	dashboard := handlers.NewDashboardHandler(st.instrument(), log)

	// 4. Optional maintenance scheduler
	var jobsHandler *handlers.JobsHandler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(log)

		if err := sched.AddJob(jobs.NewCacheJanitorJob(st.store, cfg.Scheduler.JanitorSchedule, log)); err != nil {
			return fmt.Errorf("register janitor job: %w", err)
		}
		if cfg.Archive.Enabled {
			// The sync must hit the uncached chain so fresh data
			// reaches the archive instead of a cache hit.
			if err := sched.AddJob(jobs.NewArchiveSyncJob(st.provider, cfg.Scheduler.SyncSchedule, log)); err != nil {
				return fmt.Errorf("register sync job: %w", err)
			}
		}

		sched.Start()
		defer sched.Stop()
		jobsHandler = handlers.NewJobsHandler(sched, log)

		log.WithField("jobs", sched.GetAllJobs()).Info("Scheduler started")
	}

	// 5. Create router and server
	router := api.NewRouter(reportHandler, dashboard, hub, jobsHandler, log)
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
