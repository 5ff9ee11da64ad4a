package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ExchangeConfig 描述交易所连接信息。凭证来自配置文件或环境变量
// TRADER_EXCHANGE_API_KEY / TRADER_EXCHANGE_API_SECRET。
type ExchangeConfig struct {
	Name        string `mapstructure:"name"`
	APIKey      string `mapstructure:"api_key"`
	APISecret   string `mapstructure:"api_secret"`
	UseTestnet  bool   `mapstructure:"use_testnet"`
	SettleAsset string `mapstructure:"settle_asset"`
}

// ExecutionConfig 控制下单行为。
type ExecutionConfig struct {
	// ConfirmFill 开启后，订单被接受会再查询一次订单状态与账户余额。
	ConfirmFill bool `mapstructure:"confirm_fill"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。凭证缺失在这里拦截，绝不带着空凭证去下单。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Exchange.Name == "" {
		err = multierr.Append(err, errors.New("exchange.name 不能为空"))
	}
	if c.Exchange.APIKey == "" {
		err = multierr.Append(err, errors.New("exchange.api_key 不能为空"))
	}
	if c.Exchange.APISecret == "" {
		err = multierr.Append(err, errors.New("exchange.api_secret 不能为空"))
	}
	if c.Exchange.SettleAsset == "" {
		err = multierr.Append(err, errors.New("exchange.settle_asset 不能为空"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
