package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"futures-trader/internal/exchange"
	"futures-trader/internal/order"
)

func TestDispatch_ValidationShortCircuits(t *testing.T) {
	mockClient := &mockExchangeClient{}
	d := New(mockClient, Options{}, nil)

	outcome, err := d.Dispatch(context.Background(), order.RawParams{
		Symbol:   "BTCUSDT",
		Side:     "SELL",
		Type:     "LIMIT",
		Quantity: "0.001",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var vErr *order.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *order.ValidationError, got %T", err)
	}
	if vErr.Kind != order.MissingField || vErr.Field != "price" {
		t.Errorf("expected MissingField(price), got %s(%s)", vErr.Kind, vErr.Field)
	}
	if outcome.Accepted {
		t.Error("expected outcome.Accepted=false")
	}
	if outcome.ErrorKind != ErrorKindValidation {
		t.Errorf("expected error kind %s, got %s", ErrorKindValidation, outcome.ErrorKind)
	}
	if outcome.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", outcome.ExitCode())
	}
	if len(mockClient.calls) != 0 {
		t.Errorf("expected zero exchange calls, got %v", mockClient.calls)
	}
}

func TestDispatch_MarketSuccess(t *testing.T) {
	mockClient := &mockExchangeClient{
		ack: exchange.Ack{
			OrderID: "12345",
			Status:  "open",
			Raw:     map[string]interface{}{"orderId": 12345},
		},
	}
	d := New(mockClient, Options{}, nil)

	outcome, err := d.Dispatch(context.Background(), order.RawParams{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: "0.001",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !outcome.Accepted {
		t.Fatal("expected outcome.Accepted=true")
	}
	if outcome.OrderID == "" {
		t.Error("expected non-empty order id")
	}
	if outcome.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", outcome.ExitCode())
	}
	if outcome.Payload.Price != 0 || outcome.Payload.StopPrice != 0 {
		t.Errorf("expected MARKET payload without price fields, got %+v", outcome.Payload)
	}

	expected := []string{"SubmitOrder"}
	if len(mockClient.calls) != len(expected) {
		t.Fatalf("unexpected call count: got %d want %d", len(mockClient.calls), len(expected))
	}
	for i, call := range expected {
		if mockClient.calls[i] != call {
			t.Errorf("call %d mismatch: got %s want %s", i, mockClient.calls[i], call)
		}
	}
}

func TestDispatch_StopPayloadCarriesBothPrices(t *testing.T) {
	mockClient := &mockExchangeClient{ack: exchange.Ack{OrderID: "7"}}
	d := New(mockClient, Options{}, nil)

	outcome, err := d.Dispatch(context.Background(), order.RawParams{
		Symbol:    "BTCUSDT",
		Side:      "SELL",
		Type:      "STOP",
		Quantity:  "0.001",
		Price:     "112900",
		StopPrice: "11300",
	})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if mockClient.lastPayload.Price != 112900 {
		t.Errorf("expected execution price 112900, got %f", mockClient.lastPayload.Price)
	}
	if mockClient.lastPayload.StopPrice != 11300 {
		t.Errorf("expected trigger price 11300, got %f", mockClient.lastPayload.StopPrice)
	}
	if !outcome.Accepted {
		t.Error("expected outcome.Accepted=true")
	}
}

func TestDispatch_ConfirmFillQueriesStatusAndBalance(t *testing.T) {
	mockClient := &mockExchangeClient{ack: exchange.Ack{OrderID: "99", Status: "closed"}}
	d := New(mockClient, Options{ConfirmFill: true}, nil)

	if _, err := d.Dispatch(context.Background(), order.RawParams{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: "0.001",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if got := len(mockClient.calls); got != 3 {
		t.Fatalf("expected 3 exchange calls, got %d: %v", got, mockClient.calls)
	}
	if mockClient.calls[0] != "SubmitOrder" {
		t.Errorf("expected SubmitOrder first, got %s", mockClient.calls[0])
	}
	if !mockClient.sawCall("FetchOrderStatus") || !mockClient.sawCall("FetchBalance") {
		t.Errorf("expected confirmation calls, got %v", mockClient.calls)
	}
}

func TestDispatch_ClassifiesExchangeRejections(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		kind     exchange.FailureKind
		exitCode int
	}{
		{
			name:     "insufficient margin",
			err:      &ccxt.Error{Type: ccxt.InsufficientFundsErrType, Message: "margin is insufficient"},
			kind:     exchange.FailureInsufficientMargin,
			exitCode: 2,
		},
		{
			name:     "rate limited",
			err:      &ccxt.Error{Type: ccxt.RateLimitExceededErrType, Message: "too many requests"},
			kind:     exchange.FailureRateLimited,
			exitCode: 2,
		},
		{
			name:     "price filter rejection",
			err:      &ccxt.Error{Type: ccxt.InvalidOrderErrType, Message: "price less than min price"},
			kind:     exchange.FailureRejected,
			exitCode: 2,
		},
		{
			name:     "network failure",
			err:      &ccxt.Error{Type: ccxt.NetworkErrorErrType, Message: "connection reset"},
			kind:     exchange.FailureTransport,
			exitCode: 3,
		},
		{
			name:     "unclassifiable response",
			err:      errors.New("unexpected body"),
			kind:     exchange.FailureUnknown,
			exitCode: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := &mockExchangeClient{submitErr: tc.err}
			d := New(mockClient, Options{ConfirmFill: true}, nil)

			outcome, err := d.Dispatch(context.Background(), order.RawParams{
				Symbol:   "BTCUSDT",
				Side:     "BUY",
				Type:     "MARKET",
				Quantity: "0.001",
			})
			if err == nil {
				t.Fatal("expected submit error")
			}
			if outcome.Accepted {
				t.Error("expected outcome.Accepted=false")
			}
			if outcome.ErrorKind != string(tc.kind) {
				t.Errorf("expected error kind %s, got %s", tc.kind, outcome.ErrorKind)
			}
			if outcome.Reason == "" {
				t.Error("expected reason carrying exchange message")
			}
			if outcome.ExitCode() != tc.exitCode {
				t.Errorf("expected exit code %d, got %d", tc.exitCode, outcome.ExitCode())
			}
			// 提交失败后不应再有确认查询。
			if len(mockClient.calls) != 1 {
				t.Errorf("expected single SubmitOrder call, got %v", mockClient.calls)
			}
		})
	}
}

func TestDispatch_EmitsSingleOutcomeRecord(t *testing.T) {
	validMarket := order.RawParams{
		Symbol:   "BTCUSDT",
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: "0.001",
	}

	cases := []struct {
		name      string
		raw       order.RawParams
		submitErr error
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{
			name:      "accepted",
			raw:       validMarket,
			wantLevel: zapcore.InfoLevel,
			wantMsg:   "下单成功",
		},
		{
			name:      "exchange rejection",
			raw:       validMarket,
			submitErr: &ccxt.Error{Type: ccxt.InvalidOrderErrType, Message: "rejected"},
			wantLevel: zapcore.ErrorLevel,
			wantMsg:   "下单失败",
		},
		{
			name: "validation failure",
			raw: order.RawParams{
				Symbol:   "BTCUSDT",
				Side:     "SELL",
				Type:     "LIMIT",
				Quantity: "0.001",
			},
			wantLevel: zapcore.WarnLevel,
			wantMsg:   "下单参数校验失败，未发往交易所",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			mockClient := &mockExchangeClient{
				ack:       exchange.Ack{OrderID: "42", Status: "open"},
				submitErr: tc.submitErr,
			}
			d := New(mockClient, Options{}, zap.New(core))

			_, _ = d.Dispatch(context.Background(), tc.raw)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected exactly one log record per dispatch, got %d: %v", len(entries), entries)
			}
			if entries[0].Level != tc.wantLevel {
				t.Errorf("expected level %s, got %s", tc.wantLevel, entries[0].Level)
			}
			if entries[0].Message != tc.wantMsg {
				t.Errorf("expected message %q, got %q", tc.wantMsg, entries[0].Message)
			}
		})
	}
}

type mockExchangeClient struct {
	mu          sync.Mutex
	calls       []string
	lastPayload order.Payload
	ack         exchange.Ack
	submitErr   error
}

func (m *mockExchangeClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockExchangeClient) SubmitOrder(ctx context.Context, payload order.Payload) (exchange.Ack, error) {
	m.record("SubmitOrder")
	m.lastPayload = payload
	if m.submitErr != nil {
		return exchange.Ack{}, m.submitErr
	}
	return m.ack, nil
}

func (m *mockExchangeClient) FetchOrderStatus(ctx context.Context, symbol, orderID string) (exchange.Ack, error) {
	m.record("FetchOrderStatus")
	return m.ack, nil
}

func (m *mockExchangeClient) FetchBalance(ctx context.Context) (exchange.BalanceSnapshot, error) {
	m.record("FetchBalance")
	return exchange.BalanceSnapshot{Asset: "USDT", Total: 1000, Free: 900}, nil
}

func (m *mockExchangeClient) sawCall(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.calls {
		if call == name {
			return true
		}
	}
	return false
}
