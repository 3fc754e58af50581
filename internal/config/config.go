// Package config 提供配置管理
package config

import (
	"github.com/caarlos0/env/v11"

	apperrors "github.com/eljapi/nurse-scheduling-problem/pkg/errors"
)

// Config 应用配置，全部来自环境变量
type Config struct {
	App struct {
		Name      string `env:"NAME" envDefault:"nspsolve"`
		LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
		LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	} `envPrefix:"APP_"`

	Solver struct {
		InitialTemperature    float64 `env:"INITIAL_TEMPERATURE" envDefault:"100.0"`
		CoolingRate           float64 `env:"COOLING_RATE" envDefault:"0.99"`
		MaxIterations         int     `env:"MAX_ITERATIONS" envDefault:"100000"`
		StagnationLimit       int     `env:"STAGNATION_LIMIT" envDefault:"1000"`
		WeightUpdateFrequency int     `env:"WEIGHT_UPDATE_FREQUENCY" envDefault:"0"`
		MaxRestarts           int     `env:"MAX_RESTARTS" envDefault:"5"`
		IntensifyPeriod       int     `env:"INTENSIFY_PERIOD" envDefault:"200"`
		DiversifyPeriod       int     `env:"DIVERSIFY_PERIOD" envDefault:"500"`
		EliteSize             int     `env:"ELITE_SIZE" envDefault:"5"`
		TabuCapacity          int     `env:"TABU_CAPACITY" envDefault:"50"`
		Seed                  int64   `env:"SEED" envDefault:"0"`
		Mode                  string  `env:"MODE" envDefault:"optimisation"` // optimisation/feasibility
	} `envPrefix:"SOLVER_"`

	Database struct {
		Enabled         bool   `env:"ENABLED" envDefault:"false"`
		DSN             string `env:"DSN"`
		MaxOpenConns    int    `env:"MAX_OPEN_CONNS" envDefault:"5"`
		MaxIdleConns    int    `env:"MAX_IDLE_CONNS" envDefault:"2"`
		ConnMaxLifetime int    `env:"CONN_MAX_LIFETIME" envDefault:"300"` // 秒
	} `envPrefix:"DATABASE_"`
}

// Load 从环境变量加载配置并做基本校验
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析环境变量配置失败")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	s := &c.Solver
	if s.InitialTemperature <= 0 {
		return apperrors.InvalidInput("SOLVER_INITIAL_TEMPERATURE", "必须为正数")
	}
	if s.CoolingRate <= 0 || s.CoolingRate >= 1 {
		return apperrors.InvalidInput("SOLVER_COOLING_RATE", "必须在 (0, 1) 区间内")
	}
	if s.MaxIterations <= 0 {
		return apperrors.InvalidInput("SOLVER_MAX_ITERATIONS", "必须为正数")
	}
	if s.Mode != "optimisation" && s.Mode != "feasibility" {
		return apperrors.InvalidInput("SOLVER_MODE", "只支持 optimisation 或 feasibility")
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return apperrors.InvalidInput("DATABASE_DSN", "启用持久化时必须提供")
	}
	return nil
}
