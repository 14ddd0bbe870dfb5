package repo

import (
	"context"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// IntelligenceRepo 情报记录仓库接口
type IntelligenceRepo interface {
	// Save 保存记录并返回 id
	Save(ctx context.Context, rec *model.IntelligenceRecord) (string, error)
	// Get 根据 id 获取记录
	Get(ctx context.Context, id string) (*storage.StoredIntelligence, error)
}
