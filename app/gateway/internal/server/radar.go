package server

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	irLogger "github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

// NewRadarEngine 初始化分析引擎，radar 配置段必填
func NewRadarEngine(ctx context.Context, c *config.Config, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		return nil, nil, errors.New("radar config is required")
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	// 初始化日志
	if err := irLogger.InitLogger(c.Log.Level, c.Log.File); err != nil {
		helper.Errorf("Failed to init intel_radar logger: %v", err)
		_ = irLogger.InitLogger("info", "") // 降级处理
	}

	// 初始化核心引擎
	eng, err := engine.NewFromConfig(ctx, c)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	h := eng.Health()
	helper.Infof("intel_radar engine ready: status=%s tier=%s providers=%v", h.Status, h.ActiveTier, h.AvailableProviders)

	cleanup := func() {
		helper.Info("Cleaning up intel_radar engine")
	}
	return eng, cleanup, nil
}
