package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/clickbank"
)

// SalesService 由 clickbank.Service 实现
type SalesService interface {
	SaveCredentials(ctx context.Context, userID, nickname, clerkKey string) (*clickbank.ConnectResult, error)
	FetchSales(ctx context.Context, userID string, days int) (map[string]any, error)
}

// ClickBankUseCase 所有失败都以 400 返回
type ClickBankUseCase struct {
	svc SalesService
	log *log.Helper
}

// NewClickBankUseCase svc 为空表示未配置数据库
func NewClickBankUseCase(svc SalesService, logger log.Logger) *ClickBankUseCase {
	return &ClickBankUseCase{svc: svc, log: log.NewHelper(logger)}
}

func (uc *ClickBankUseCase) Connect(ctx context.Context, userID, nickname, clerkKey string) (*clickbank.ConnectResult, error) {
	if uc.svc == nil {
		return nil, errors.BadRequest("CLICKBANK_UNAVAILABLE", "clickbank storage is not configured")
	}
	res, err := uc.svc.SaveCredentials(ctx, userID, nickname, clerkKey)
	if err != nil {
		uc.log.Errorf("connect clickbank for user %s: %v", userID, err)
		return nil, errors.BadRequest("CLICKBANK_CONNECT_FAILED", err.Error())
	}
	return res, nil
}

func (uc *ClickBankUseCase) Sales(ctx context.Context, userID string, days int) (map[string]any, error) {
	if uc.svc == nil {
		return nil, errors.BadRequest("CLICKBANK_UNAVAILABLE", "clickbank storage is not configured")
	}
	if userID == "" {
		return nil, errors.BadRequest("INVALID_USER", "user_id is required")
	}
	out, err := uc.svc.FetchSales(ctx, userID, days)
	if err != nil {
		uc.log.Errorf("fetch clickbank sales for user %s: %v", userID, err)
		return nil, errors.BadRequest("CLICKBANK_SALES_FAILED", err.Error())
	}
	return out, nil
}
