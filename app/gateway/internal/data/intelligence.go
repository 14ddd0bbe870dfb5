package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/repo"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

type intelligenceRepo struct {
	data *Data
	log  *log.Helper
}

// NewIntelligenceRepo 未配置数据库时返回 nil
func NewIntelligenceRepo(data *Data, logger log.Logger) repo.IntelligenceRepo {
	if data.store == nil {
		return nil
	}
	return &intelligenceRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *intelligenceRepo) Save(ctx context.Context, rec *model.IntelligenceRecord) (string, error) {
	return r.data.store.SaveIntelligence(ctx, rec)
}

func (r *intelligenceRepo) Get(ctx context.Context, id string) (*storage.StoredIntelligence, error) {
	rec, err := r.data.store.GetIntelligence(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.NotFound("INTELLIGENCE_NOT_FOUND", "intelligence record not found")
		}
		return nil, err
	}
	return rec, nil
}
