package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"futures-trader/internal/app"
	"futures-trader/internal/config"
	"futures-trader/internal/log"
	"futures-trader/internal/order"
)

func main() {
	var (
		configPath  string
		showBalance bool
		raw         order.RawParams
	)

	flag.StringVar(&configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	flag.BoolVar(&showBalance, "balance", false, "只查询账户余额，不下单")
	flag.StringVar(&raw.Symbol, "symbol", "", "交易对，例如 BTCUSDT")
	flag.StringVar(&raw.Side, "side", "", "方向 BUY|SELL")
	flag.StringVar(&raw.Type, "type", "", "类型 MARKET|LIMIT|STOP")
	flag.StringVar(&raw.Quantity, "quantity", "", "数量")
	flag.StringVar(&raw.Price, "price", "", "价格（LIMIT/STOP 必填）")
	flag.StringVar(&raw.StopPrice, "stop-price", "", "触发价（STOP 必填）")
	flag.Parse()

	// .env 仅用于补充环境变量，文件不存在不算错误。
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	trader, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("初始化失败", zap.Error(err))
		exit(logger, 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if showBalance {
		if err := trader.ShowBalance(ctx); err != nil {
			logger.Error("查询余额失败", zap.Error(err))
			exit(logger, 3)
		}
		exit(logger, 0)
	}

	outcome, err := trader.PlaceOrder(ctx, raw)
	if err != nil {
		logger.Error("下单未被接受",
			zap.String("error_kind", outcome.ErrorKind),
			zap.Error(err),
		)
	}
	exit(logger, outcome.ExitCode())
}

func exit(logger *zap.Logger, code int) {
	_ = logger.Sync()
	os.Exit(code)
}
