package order

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Type 表示订单类型。
type Type string

const (
	TypeMarket Type = "MARKET"
	TypeLimit  Type = "LIMIT"
	TypeStop   Type = "STOP"
)

// TimeInForce 控制限价单的有效期。本系统固定使用 GTC。
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
)

// RawParams 承载来自 CLI 的原始下单参数，均为未解析的字符串。
type RawParams struct {
	Symbol    string
	Side      string
	Type      string
	Quantity  string
	Price     string
	StopPrice string
}

// Request 为通过校验后的下单请求。各字段与 Type 保持一致：
// MARKET 不携带价格字段，LIMIT 携带 Price，STOP 同时携带 Price 与 StopPrice。
type Request struct {
	Symbol    string
	Side      Side
	Type      Type
	Quantity  float64
	Price     float64
	StopPrice float64
}

// Payload 是发往交易所的最小字段集合，由 Build 从 Request 派生。
// 同一 Request 总是产生相同的 Payload。
type Payload struct {
	Symbol      string
	Side        Side
	Type        Type
	Quantity    float64
	Price       float64
	StopPrice   float64
	TimeInForce TimeInForce
}
