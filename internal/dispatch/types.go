package dispatch

import (
	"time"

	"futures-trader/internal/exchange"
	"futures-trader/internal/order"
)

// ErrorKindValidation 标记在本地校验阶段就被拦截、从未发往交易所的请求。
const ErrorKindValidation = "VALIDATION_FAILED"

// Outcome 为一次下单尝试的最终结果，每次尝试恰好产生一条，生成后不再修改。
type Outcome struct {
	Accepted     bool
	OrderID      string
	Status       string
	Raw          map[string]interface{}
	ErrorKind    string
	Reason       string
	Request      order.Request
	Payload      order.Payload
	DispatchedAt time.Time
}

// ExitCode 将结果映射为进程退出码：
// 0 订单被接受，1 校验失败，2 交易所拒绝（含无法归类的应答），3 传输失败。
func (o Outcome) ExitCode() int {
	if o.Accepted {
		return 0
	}
	if o.ErrorKind == ErrorKindValidation {
		return 1
	}
	if exchange.FailureKind(o.ErrorKind).IsRejection() {
		return 2
	}
	return 3
}
