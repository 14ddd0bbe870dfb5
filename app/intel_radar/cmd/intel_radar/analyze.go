package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

var analyzeFlags struct {
	research []string
	enhanced bool
	campaign string
	depth    string
	skipVSL  bool
	save     bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>...",
	Short: "Analyze one or more sales pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, eng, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		docs, err := readResearchFiles(analyzeFlags.research)
		if err != nil {
			return err
		}

		// 配置了数据库且要求保存时才连接
		var store *storage.Storage
		if analyzeFlags.save && cfg.DB.Host != "" {
			s, err := storage.NewStorage(ctx, cfg.DB)
			if err != nil {
				logger.Log.Errorf("无法连接数据库: %v. 结果只输出到终端。", err)
			} else {
				store = s
				defer store.Close()
			}
		}

		records := make([]*model.IntelligenceRecord, len(args))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Concurrency.Workers)
		for i, u := range args {
			g.Go(func() error {
				rec := runAnalysis(gctx, eng, u, docs)
				if store != nil {
					id, err := store.SaveIntelligence(gctx, rec)
					if err != nil {
						logger.Log.Errorf("保存情报失败 [%s]: %v", u, err)
					} else {
						logger.Log.Infof("情报已保存 [%s] id=%s", u, id)
					}
				}
				records[i] = rec
				return nil
			})
		}
		// 单个分析不会返回错误，这里只等待全部完成
		_ = g.Wait()

		return writeRecords(cmd.OutOrStdout(), records)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringSliceVar(&analyzeFlags.research, "research", nil, "研究文档路径，可重复指定")
	f.BoolVar(&analyzeFlags.enhanced, "enhanced", false, "输出营销角度、可执行建议与视频检测")
	f.StringVar(&analyzeFlags.campaign, "campaign", "", "关联的活动 ID")
	f.StringVar(&analyzeFlags.depth, "depth", engine.DefaultAnalysisDepth, "分析深度")
	f.BoolVar(&analyzeFlags.skipVSL, "skip-vsl", false, "跳过视频检测")
	f.BoolVar(&analyzeFlags.save, "save", false, "保存结果到数据库")
}

// runAnalysis 按参数选择普通、研究增强或增强分析
func runAnalysis(ctx context.Context, eng *engine.Engine, u string, docs []string) *model.IntelligenceRecord {
	if analyzeFlags.enhanced {
		return eng.AnalyzeEnhanced(ctx, u, engine.EnhancedOptions{
			CampaignID:    analyzeFlags.campaign,
			AnalysisDepth: analyzeFlags.depth,
			SkipVSL:       analyzeFlags.skipVSL,
			ResearchDocs:  docs,
		})
	}
	if len(docs) > 0 {
		return eng.AnalyzeWithResearchContext(ctx, u, docs)
	}
	return eng.Analyze(ctx, u)
}

// readResearchFiles 读取研究文档，空文件跳过
func readResearchFiles(paths []string) ([]string, error) {
	docs := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("读取研究文档失败 %s: %w", p, err)
		}
		if len(data) == 0 {
			continue
		}
		docs = append(docs, string(data))
	}
	return docs, nil
}

// writeRecords 单个记录直接输出对象，多个记录输出数组
func writeRecords(w io.Writer, records []*model.IntelligenceRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(records) == 1 {
		return enc.Encode(records[0])
	}
	return enc.Encode(records)
}
