package app

import (
	"context"

	"go.uber.org/zap"

	"futures-trader/internal/config"
	"futures-trader/internal/dispatch"
	"futures-trader/internal/exchange"
	"futures-trader/internal/order"
)

// App 聚合核心依赖：交易所客户端与派发器。
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *exchange.Client
	dispatcher *dispatch.Dispatcher
}

// New 创建 App 实例并完成依赖装配。凭证缺失会在这里直接失败。
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	client, err := exchange.NewClient(cfg.Exchange, logger)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(client, dispatch.Options{
		ConfirmFill: cfg.Execution.ConfirmFill,
	}, logger)

	return &App{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		dispatcher: dispatcher,
	}, nil
}

// PlaceOrder 执行一次下单派发。
func (a *App) PlaceOrder(ctx context.Context, raw order.RawParams) (dispatch.Outcome, error) {
	a.logger.Info("收到下单请求",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("exchange", a.cfg.Exchange.Name),
		zap.Bool("testnet", a.cfg.Exchange.UseTestnet),
	)
	return a.dispatcher.Dispatch(ctx, raw)
}

// ShowBalance 查询并输出账户余额。
func (a *App) ShowBalance(ctx context.Context) error {
	snapshot, err := a.client.FetchBalance(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("账户余额",
		zap.String("asset", snapshot.Asset),
		zap.Float64("total", snapshot.Total),
		zap.Float64("free", snapshot.Free),
		zap.Float64("used", snapshot.Used),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
	)
	return nil
}
