// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json/console
	Output     string `json:"output"` // stdout/stderr/file
	FilePath   string `json:"file_path,omitempty"`
	TimeFormat string `json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stdout":
			output = os.Stdout
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stderr
				}
			} else {
				output = os.Stderr
			}
		default:
			output = os.Stderr
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// SolverLogger 求解引擎专用日志器
type SolverLogger struct {
	base *zerolog.Logger
}

// NewSolverLogger 创建求解引擎日志器
func NewSolverLogger() *SolverLogger {
	l := Get().With().Str("component", "solver").Logger()
	return &SolverLogger{base: &l}
}

// StartRun 记录求解开始
func (l *SolverLogger) StartRun(runID string, employees, days, shiftTypes int) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("days", days).
		Int("shift_types", shiftTypes).
		Msg("开始求解")
}

// NewBest 记录发现更优解
func (l *SolverLogger) NewBest(iteration, hard, soft int) {
	l.base.Debug().
		Int("iteration", iteration).
		Int("hard", hard).
		Int("soft", soft).
		Msg("发现更优解")
}

// Progress 记录迭代进度
func (l *SolverLogger) Progress(iteration, bestHard, bestSoft, currentHard, currentSoft int, temperature float64) {
	l.base.Debug().
		Int("iteration", iteration).
		Int("best_hard", bestHard).
		Int("best_soft", bestSoft).
		Int("current_hard", currentHard).
		Int("current_soft", currentSoft).
		Float64("temperature", temperature).
		Msg("迭代进度")
}

// Stagnation 记录停滞重启
func (l *SolverLogger) Stagnation(iteration int, pathRelinking bool) {
	l.base.Info().
		Int("iteration", iteration).
		Bool("path_relinking", pathRelinking).
		Msg("检测到停滞，重加热并扰动")
}

// Diversify 记录多样化重启
func (l *SolverLogger) Diversify(iteration, restartCount int) {
	l.base.Info().
		Int("iteration", iteration).
		Int("restart_count", restartCount).
		Msg("执行多样化重启")
}

// RunComplete 记录求解完成
func (l *SolverLogger) RunComplete(runID string, duration time.Duration, hard, soft, iterations int, feasible bool) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Int("hard", hard).
		Int("soft", soft).
		Int("iterations", iterations).
		Bool("feasible", feasible).
		Msg("求解完成")
}
