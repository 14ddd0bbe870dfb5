package service

import (
	"context"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/usecase"
)

// ConnectRequest POST /clickbank/connect 请求体
type ConnectRequest struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	ClerkKey string `json:"clerk_key"`
}

type ClickBankService struct {
	uc   *usecase.ClickBankUseCase
	auth *usecase.AuthUseCase
	log  *log.Helper
}

func NewClickBankService(uc *usecase.ClickBankUseCase, auth *usecase.AuthUseCase, logger log.Logger) *ClickBankService {
	return &ClickBankService{uc: uc, auth: auth, log: log.NewHelper(logger)}
}

// userID 开启鉴权时以 token 中的 uid 为准
func (s *ClickBankService) userID(ctx context.Context, fallback string) (string, error) {
	if !s.auth.Enabled() {
		return fallback, nil
	}
	uid, ok := usecase.UserIDFromContext(ctx)
	if !ok {
		return "", errors.Unauthorized("UNAUTHORIZED", "token has no uid claim")
	}
	return uid, nil
}

// Connect POST /clickbank/connect
func (s *ClickBankService) Connect(ctx http.Context) error {
	var in ConnectRequest
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		r := req.(*ConnectRequest)
		uid, err := s.userID(c, r.UserID)
		if err != nil {
			return nil, err
		}
		return s.uc.Connect(c, uid, r.Nickname, r.ClerkKey)
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// Sales GET /clickbank/sales?user_id=&days=
func (s *ClickBankService) Sales(ctx http.Context) error {
	q := ctx.Query()
	days := 0
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.BadRequest("INVALID_DAYS", "days must be a non-negative integer")
		}
		days = n
	}
	h := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		uid, err := s.userID(c, q.Get("user_id"))
		if err != nil {
			return nil, err
		}
		return s.uc.Sales(c, uid, days)
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}
