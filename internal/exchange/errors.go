package exchange

import (
	"context"
	"errors"
	"net"

	ccxt "github.com/ccxt/ccxt/go/v4"
)

// FailureKind 区分一次提交失败的类别。
// 业务拒绝（订单已送达但被交易所拒绝）与传输失败（订单可能根本没有送达）必须可区分。
type FailureKind string

const (
	FailureRejected           FailureKind = "REJECTED_BY_EXCHANGE"
	FailureRateLimited        FailureKind = "RATE_LIMITED"
	FailureInsufficientMargin FailureKind = "INSUFFICIENT_MARGIN"
	FailureTransport          FailureKind = "TRANSPORT_FAILURE"
	FailureUnknown            FailureKind = "UNKNOWN"
)

// IsRejection 报告该类失败是否属于交易所侧拒绝，无法归类的应答也算在内；
// 只有传输失败（订单可能没有送达）例外。
func (k FailureKind) IsRejection() bool {
	switch k {
	case FailureRejected, FailureRateLimited, FailureInsufficientMargin, FailureUnknown:
		return true
	default:
		return false
	}
}

// Classify 将底层错误归入 FailureKind。
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureTransport
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType:
			return FailureRateLimited
		case ccxt.InsufficientFundsErrType:
			return FailureInsufficientMargin
		case ccxt.InvalidOrderErrType,
			ccxt.OrderNotFoundErrType,
			ccxt.BadSymbolErrType,
			ccxt.BadRequestErrType,
			ccxt.ArgumentsRequiredErrType,
			ccxt.AuthenticationErrorErrType,
			ccxt.PermissionDeniedErrType,
			ccxt.ExchangeErrorErrType:
			return FailureRejected
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.OnMaintenanceErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return FailureTransport
		default:
			return FailureUnknown
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureTransport
	}

	return FailureUnknown
}
