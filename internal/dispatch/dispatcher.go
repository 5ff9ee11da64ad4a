package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"futures-trader/internal/exchange"
	"futures-trader/internal/order"
)

type exchangeClient interface {
	SubmitOrder(ctx context.Context, payload order.Payload) (exchange.Ack, error)
	FetchOrderStatus(ctx context.Context, symbol, orderID string) (exchange.Ack, error)
	FetchBalance(ctx context.Context) (exchange.BalanceSnapshot, error)
}

var _ exchangeClient = (*exchange.Client)(nil)

// Options 控制派发行为。
type Options struct {
	// ConfirmFill 开启后，订单被接受会额外查询一次订单状态与账户余额。
	ConfirmFill bool
}

// Dispatcher 驱动单次下单流水线：校验 → 构造载荷 → 提交 → 归一化结果。
// 每次 Dispatch 相互独立，不持有跨次状态；校验失败的请求不会触碰网络。
type Dispatcher struct {
	client exchangeClient
	logger *zap.Logger
	opts   Options
}

// New 创建派发器。
func New(client exchangeClient, opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client: client,
		logger: logger,
		opts:   opts,
	}
}

// Dispatch 执行一次完整的下单尝试并返回 Outcome。
// 无论成功失败，每次尝试恰好写出一条结果日志，绝不静默丢弃。
func (d *Dispatcher) Dispatch(ctx context.Context, raw order.RawParams) (Outcome, error) {
	outcome := Outcome{DispatchedAt: time.Now().UTC()}

	req, err := order.Parse(raw)
	if err != nil {
		outcome.ErrorKind = ErrorKindValidation
		outcome.Reason = err.Error()
		d.logger.Warn("下单参数校验失败，未发往交易所",
			zap.String("symbol", raw.Symbol),
			zap.String("side", raw.Side),
			zap.String("type", raw.Type),
			zap.String("quantity", raw.Quantity),
			zap.String("error_kind", outcome.ErrorKind),
			zap.String("reason", outcome.Reason),
		)
		return outcome, err
	}

	outcome.Request = req
	payload := order.Build(req)
	outcome.Payload = payload

	ack, submitErr := d.client.SubmitOrder(ctx, payload)
	if submitErr != nil {
		kind := exchange.Classify(submitErr)
		outcome.ErrorKind = string(kind)
		outcome.Reason = submitErr.Error()
		d.logger.Error("下单失败",
			append(payloadFields(payload),
				zap.String("error_kind", outcome.ErrorKind),
				zap.String("reason", outcome.Reason),
			)...,
		)
		return outcome, submitErr
	}

	outcome.Accepted = true
	outcome.OrderID = ack.OrderID
	outcome.Status = ack.Status
	outcome.Raw = ack.Raw

	d.logger.Info("下单成功",
		append(payloadFields(payload),
			zap.String("order_id", outcome.OrderID),
			zap.String("status", outcome.Status),
			zap.Any("raw", outcome.Raw),
		)...,
	)

	if d.opts.ConfirmFill {
		d.confirm(ctx, payload.Symbol, outcome.OrderID)
	}

	return outcome, nil
}

// confirm 在订单被接受后并发拉取订单状态与账户余额。
// 这里的失败只记录告警，不会改变已经生成的 Outcome。
func (d *Dispatcher) confirm(ctx context.Context, symbol, orderID string) {
	var (
		status  exchange.Ack
		balance exchange.BalanceSnapshot
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ack, err := d.client.FetchOrderStatus(groupCtx, symbol, orderID)
		if err != nil {
			return err
		}
		status = ack
		return nil
	})

	group.Go(func() error {
		snapshot, err := d.client.FetchBalance(groupCtx)
		if err != nil {
			return err
		}
		balance = snapshot
		return nil
	})

	if err := group.Wait(); err != nil {
		d.logger.Warn("订单确认查询失败",
			zap.String("symbol", symbol),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("订单确认完成",
		zap.String("symbol", symbol),
		zap.String("order_id", orderID),
		zap.String("order_status", status.Status),
		zap.String("asset", balance.Asset),
		zap.Float64("balance_total", balance.Total),
		zap.Float64("balance_free", balance.Free),
	)
}

func payloadFields(p order.Payload) []zap.Field {
	fields := []zap.Field{
		zap.String("symbol", p.Symbol),
		zap.String("side", string(p.Side)),
		zap.String("type", string(p.Type)),
		zap.Float64("quantity", p.Quantity),
	}
	if p.Price > 0 {
		fields = append(fields, zap.Float64("price", p.Price))
	}
	if p.StopPrice > 0 {
		fields = append(fields, zap.Float64("stop_price", p.StopPrice))
	}
	if p.TimeInForce != "" {
		fields = append(fields, zap.String("time_in_force", string(p.TimeInForce)))
	}
	return fields
}
