package order

// Build 将合法的 Request 映射为交易所载荷。映射是纯函数，没有失败路径：
// 字段一致性已由 Parse 保证。
//
// MARKET 只携带 symbol/side/type/quantity；
// LIMIT 追加 price 与 GTC 有效期；
// STOP 追加触发价 stopPrice 与触发后执行的限价 price。
func Build(req Request) Payload {
	payload := Payload{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Quantity: req.Quantity,
	}

	switch req.Type {
	case TypeLimit:
		payload.Price = req.Price
		payload.TimeInForce = TimeInForceGTC
	case TypeStop:
		payload.Price = req.Price
		payload.StopPrice = req.StopPrice
		payload.TimeInForce = TimeInForceGTC
	}

	return payload
}
