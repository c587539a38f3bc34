package app

import (
	"os"
	"time"

	"github.com/stablefront/internal/config"
	"github.com/stablefront/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 在同一进程内同时拉起 API 与队列 worker，
// api / worker 用于把两者拆成独立进程部署。
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string // ModeAll / ModeAPI / ModeWorker
}

// normalizeOptions 补齐缺省的日志、停机超时与启动模式
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
