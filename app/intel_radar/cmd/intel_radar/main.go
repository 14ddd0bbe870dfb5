package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "intel_radar",
	Short: "Competitive intelligence for sales pages",
	Long: `intel_radar 抓取销售页面，按成本分档调用 LLM 提供商，输出结构化竞争情报。

Examples:
  intel_radar analyze https://example.com/offer
  intel_radar analyze --enhanced --research notes.txt https://example.com/offer
  intel_radar health -c configs/config.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
	rootCmd.AddCommand(analyzeCmd, healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap 加载配置、初始化日志并构建分析引擎
func bootstrap(ctx context.Context) (*config.Config, *engine.Engine, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Printf("无法初始化日志: %v", err)
	}

	eng, err := engine.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, eng, nil
}
