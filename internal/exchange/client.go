package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"futures-trader/internal/config"
	"futures-trader/internal/order"
)

// Client 封装 Binance USDⓈ-M 测试网交易客户端。
// 签名与时间戳由底层库处理，本层只负责载荷提交与响应转换。
// 每次调用只尝试一次，不做重试，重试策略属于调用方。
type Client struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Binanceusdm

	marketsMu     sync.Mutex
	marketsLoaded bool
}

// NewClient 构造 Binance USDⓈ-M 客户端，UseTestnet 开启时切换到测试网地址。
func NewClient(cfg config.ExchangeConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("exchange: API 凭证未配置")
	}

	userConfig := map[string]interface{}{
		"apiKey":          cfg.APIKey,
		"secret":          cfg.APISecret,
		"enableRateLimit": true,
		"options": map[string]interface{}{
			"adjustForTimeDifference": true,
			"defaultType":             "future",
		},
	}

	ex := ccxt.NewBinanceusdm(userConfig)
	if cfg.UseTestnet {
		ex.SetSandboxMode(true)
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		exchange: ex,
	}, nil
}

// SubmitOrder 按载荷类型提交订单并返回交易所应答。单次尝试，失败直接上抛。
func (c *Client) SubmitOrder(ctx context.Context, payload order.Payload) (Ack, error) {
	if err := c.ensureMarketsLoaded(ctx); err != nil {
		return Ack{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Ack{}, ctxErr
	}

	side := strings.ToLower(string(payload.Side))

	start := time.Now()
	var (
		raw ccxt.Order
		err error
	)

	switch payload.Type {
	case order.TypeMarket:
		raw, err = c.exchange.CreateMarketOrder(payload.Symbol, side, payload.Quantity)
	case order.TypeLimit:
		raw, err = c.exchange.CreateLimitOrder(payload.Symbol, side, payload.Quantity, payload.Price,
			ccxt.WithCreateLimitOrderParams(map[string]interface{}{
				"timeInForce": string(payload.TimeInForce),
			}),
		)
	case order.TypeStop:
		// 条件单：到达 stopPrice 触发后按 price 以限价执行。
		raw, err = c.exchange.CreateOrder(payload.Symbol, "limit", side, payload.Quantity,
			ccxt.WithCreateOrderPrice(payload.Price),
			ccxt.WithCreateOrderParams(map[string]interface{}{
				"stopPrice":   payload.StopPrice,
				"timeInForce": string(payload.TimeInForce),
			}),
		)
	default:
		return Ack{}, fmt.Errorf("exchange: 不支持的订单类型 %s", payload.Type)
	}

	latency := time.Since(start)
	if err != nil {
		c.logger.Debug("订单提交失败",
			zap.String("symbol", payload.Symbol),
			zap.String("type", string(payload.Type)),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return Ack{}, err
	}

	ack := convertOrder(payload.Symbol, raw)
	c.logger.Debug("订单已提交",
		zap.String("symbol", payload.Symbol),
		zap.String("order_id", ack.OrderID),
		zap.Duration("latency", latency),
	)
	return ack, nil
}

// FetchOrderStatus 查询已提交订单的当前状态。
func (c *Client) FetchOrderStatus(ctx context.Context, symbol, orderID string) (Ack, error) {
	if err := c.ensureMarketsLoaded(ctx); err != nil {
		return Ack{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Ack{}, ctxErr
	}

	raw, err := c.exchange.FetchOrder(orderID, ccxt.WithFetchOrderSymbol(symbol))
	if err != nil {
		return Ack{}, fmt.Errorf("exchange: 查询订单状态失败: %w", err)
	}
	return convertOrder(symbol, raw), nil
}

// FetchBalance 获取 USDT 结算余额。
func (c *Client) FetchBalance(ctx context.Context) (BalanceSnapshot, error) {
	if err := c.ensureMarketsLoaded(ctx); err != nil {
		return BalanceSnapshot{}, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return BalanceSnapshot{}, ctxErr
	}

	balances, err := c.exchange.FetchBalance()
	if err != nil {
		return BalanceSnapshot{}, fmt.Errorf("exchange: 获取账户余额失败: %w", err)
	}

	snapshot := BalanceSnapshot{
		Asset:       c.cfg.SettleAsset,
		RetrievedAt: time.Now().UTC(),
	}
	if snapshot.Asset == "" {
		snapshot.Asset = "USDT"
	}

	if balances.Total != nil {
		if total, ok := balances.Total[snapshot.Asset]; ok && total != nil {
			snapshot.Total = *total
		}
	}
	if balances.Free != nil {
		if free, ok := balances.Free[snapshot.Asset]; ok && free != nil {
			snapshot.Free = *free
		}
	}
	if balances.Used != nil {
		if used, ok := balances.Used[snapshot.Asset]; ok && used != nil {
			snapshot.Used = *used
		}
	}

	return snapshot, nil
}

func (c *Client) ensureMarketsLoaded(ctx context.Context) error {
	c.marketsMu.Lock()
	defer c.marketsMu.Unlock()

	if c.marketsLoaded {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if _, err := c.exchange.LoadMarkets(); err != nil {
		return fmt.Errorf("exchange: 加载市场元数据失败: %w", err)
	}

	c.marketsLoaded = true
	c.logger.Info("已完成市场元数据加载", zap.Bool("testnet", c.cfg.UseTestnet))
	return nil
}

func convertOrder(symbol string, raw ccxt.Order) Ack {
	ack := Ack{
		Symbol: symbol,
		Raw:    raw.Info,
	}
	if raw.Id != nil {
		ack.OrderID = *raw.Id
	}
	if raw.ClientOrderId != nil {
		ack.ClientOrderID = *raw.ClientOrderId
	}
	if raw.Status != nil {
		ack.Status = *raw.Status
	}
	return ack
}
