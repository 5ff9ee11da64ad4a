package exchange

import (
	"context"
	"errors"
	"fmt"
	"testing"

	ccxt "github.com/ccxt/ccxt/go/v4"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureKind
	}{
		{
			name: "rate limit",
			err:  &ccxt.Error{Type: ccxt.RateLimitExceededErrType, Message: "too many requests"},
			want: FailureRateLimited,
		},
		{
			name: "ddos protection",
			err:  &ccxt.Error{Type: ccxt.DDoSProtectionErrType, Message: "banned"},
			want: FailureRateLimited,
		},
		{
			name: "insufficient funds",
			err:  &ccxt.Error{Type: ccxt.InsufficientFundsErrType, Message: "margin is insufficient"},
			want: FailureInsufficientMargin,
		},
		{
			name: "invalid order",
			err:  &ccxt.Error{Type: ccxt.InvalidOrderErrType, Message: "filter failure: PRICE_FILTER"},
			want: FailureRejected,
		},
		{
			name: "authentication",
			err:  &ccxt.Error{Type: ccxt.AuthenticationErrorErrType, Message: "invalid api key"},
			want: FailureRejected,
		},
		{
			name: "wrapped exchange error",
			err:  fmt.Errorf("提交失败: %w", &ccxt.Error{Type: ccxt.ExchangeErrorErrType, Message: "rejected"}),
			want: FailureRejected,
		},
		{
			name: "network error",
			err:  &ccxt.Error{Type: ccxt.NetworkErrorErrType, Message: "connection reset"},
			want: FailureTransport,
		},
		{
			name: "request timeout",
			err:  &ccxt.Error{Type: ccxt.RequestTimeoutErrType, Message: "timeout"},
			want: FailureTransport,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: FailureTransport,
		},
		{
			name: "plain error",
			err:  errors.New("something odd"),
			want: FailureUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestFailureKindIsRejection(t *testing.T) {
	rejections := []FailureKind{FailureRejected, FailureRateLimited, FailureInsufficientMargin, FailureUnknown}
	for _, kind := range rejections {
		if !kind.IsRejection() {
			t.Errorf("expected %s to count as rejection", kind)
		}
	}
	if FailureTransport.IsRejection() {
		t.Error("transport failures must not count as rejections")
	}
}
