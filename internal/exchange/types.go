package exchange

import "time"

// Ack 为交易所对一笔订单请求的应答。Raw 保留原始响应内容供审计。
type Ack struct {
	OrderID       string
	ClientOrderID string
	Status        string
	Symbol        string
	Raw           map[string]interface{}
}

// BalanceSnapshot 描述合约账户的结算币种余额。
type BalanceSnapshot struct {
	Asset       string
	Total       float64
	Free        float64
	Used        float64
	RetrievedAt time.Time
}
