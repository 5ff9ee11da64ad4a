package order

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationKind 区分校验失败的类别。
type ValidationKind string

const (
	// MissingField 表示必填字段缺失。
	MissingField ValidationKind = "MISSING_FIELD"
	// InvalidEnum 表示枚举字段取值非法。
	InvalidEnum ValidationKind = "INVALID_ENUM"
	// InvalidValue 表示数值字段无法解析或不为正。
	InvalidValue ValidationKind = "INVALID_VALUE"
)

// ValidationError 描述一次校验失败。校验采用快速失败策略，只报告第一个问题。
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("order: 缺少必填字段 %s", e.Field)
	case InvalidEnum:
		return fmt.Sprintf("order: 字段 %s 取值非法", e.Field)
	default:
		return fmt.Sprintf("order: 字段 %s 必须为正数", e.Field)
	}
}

// Parse 校验原始参数并生成 Request。side 与 type 接受大小写混用，统一转为大写。
// MARKET 订单允许携带多余的价格字段，解析时直接丢弃而非报错。
func Parse(raw RawParams) (Request, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw.Symbol))
	if symbol == "" {
		return Request{}, &ValidationError{Kind: MissingField, Field: "symbol"}
	}

	side := Side(strings.ToUpper(strings.TrimSpace(raw.Side)))
	if side != SideBuy && side != SideSell {
		return Request{}, &ValidationError{Kind: InvalidEnum, Field: "side"}
	}

	typ := Type(strings.ToUpper(strings.TrimSpace(raw.Type)))
	if typ != TypeMarket && typ != TypeLimit && typ != TypeStop {
		return Request{}, &ValidationError{Kind: InvalidEnum, Field: "type"}
	}

	quantity, ok := parsePositive(raw.Quantity)
	if !ok {
		return Request{}, &ValidationError{Kind: InvalidValue, Field: "quantity"}
	}

	req := Request{
		Symbol:   symbol,
		Side:     side,
		Type:     typ,
		Quantity: quantity,
	}

	price, priceSet := parsePositive(raw.Price)
	stopPrice, stopSet := parsePositive(raw.StopPrice)

	switch typ {
	case TypeLimit:
		if !priceSet {
			return Request{}, &ValidationError{Kind: MissingField, Field: "price"}
		}
		req.Price = price
	case TypeStop:
		if !priceSet {
			return Request{}, &ValidationError{Kind: MissingField, Field: "price"}
		}
		if !stopSet {
			return Request{}, &ValidationError{Kind: MissingField, Field: "stopPrice"}
		}
		req.Price = price
		req.StopPrice = stopPrice
	case TypeMarket:
		// 多余的价格字段被忽略，保持零值。
	}

	return req, nil
}

func parsePositive(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
