package crawl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dszqbsm/musiccrawler/engine"
	"github.com/dszqbsm/musiccrawler/generator"
	"github.com/dszqbsm/musiccrawler/log"
	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/sqlstorage"
	"github.com/dszqbsm/musiccrawler/tasklib"
	"github.com/dszqbsm/musiccrawler/weapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var CrawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "run crawler tasks.",
	Long:  "run the crawler tasks listed in the config file until every request is handled.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return stopErr(ctx, Run(ctx))
	},
}

// 收到中断信号导致的取消属于正常退出
func stopErr(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		zap.L().Info("crawler interrupted")
		return nil
	}
	return err
}

var (
	configPath string
	workCount  int
)

func init() {
	CrawlCmd.Flags().StringVar(
		&configPath, "config", "config.toml", "set config file path")
	CrawlCmd.Flags().IntVar(
		&workCount, "workers", 5, "set worker count")
}

/*
输入一个上下文，输出一个错误

加载配置、初始化日志和签名器，注册网易云任务，创建采集器和存储器，解析种子任务后启动引擎，配置错误会在发出任何请求前返回
*/
func Run(ctx context.Context) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := log.Setup(cfg.Get("logLevel").String("INFO"), cfg.Get("logFile").String(""))
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logger.Sync()
	logger.Info("log init end")

	zap.ReplaceGlobals(logger)

	signer, err := weapi.NewSigner(SignerOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("init signer: %w", err)
	}
	tasklib.Register(signer, NeteaseConfig(cfg))

	fc := ParseFetcherConfig(cfg, logger)
	f := spider.NewFetchService(spider.BrowserFetchType, logger.Named("fetcher"))

	var storage spider.DataRepository
	if sqlURL := cfg.Get("storage", "sqlURL").String(""); sqlURL != "" {
		s, err := sqlstorage.New(
			sqlstorage.WithSqlUrl(sqlURL),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
			sqlstorage.WithBatchCount(cfg.Get("storage", "batchCount").Int(100)),
		)
		if err != nil {
			return fmt.Errorf("create sqlstorage: %w", err)
		}
		storage = s
	} else {
		logger.Warn("storage.sqlURL is empty, items are only logged")
	}

	var tcfg []spider.TaskConfig
	if err := cfg.Get("Tasks").Scan(&tcfg); err != nil {
		return fmt.Errorf("init seed tasks: %w", err)
	}
	seeds := ParseTaskConfig(logger, f, storage, fc, tcfg)

	runID, err := generator.NewRunID(generator.LocalIP())
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger.Info("crawl run", zap.String("run", runID), zap.Int("tasks", len(seeds)))

	s := engine.NewEngine(
		engine.WithFetcher(f),
		engine.WithStorage(storage),
		engine.WithLogger(logger),
		engine.WithWorkCount(workCount),
		engine.WithSeeds(seeds),
		engine.WithRunID(runID),
		engine.WithScheduler(engine.NewSchedule()),
	)

	return s.Run(ctx)
}
