package clickbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// DefaultDays 销售汇总默认统计天数
const DefaultDays = 30

var (
	// ErrNotConnected 用户尚未绑定 ClickBank 账号
	ErrNotConnected = errors.New("ClickBank account not connected")
	// ErrAPI ClickBank 返回非 200
	ErrAPI = errors.New("ClickBank API error")
)

// CredStore 凭据存取，由 storage.Storage 实现
type CredStore interface {
	SaveClickBankCreds(ctx context.Context, c storage.ClickBankCreds) error
	GetClickBankCreds(ctx context.Context, userID string) (*storage.ClickBankCreds, error)
}

// ConnectResult 绑定结果
type ConnectResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Service ClickBank 凭据管理与销售数据代理
type Service struct {
	store   CredStore
	baseURL string
	devKey  string
	client  *http.Client
}

// NewService 创建服务，httpClient 为空时使用 30 秒超时的默认客户端
func NewService(store CredStore, cfg config.ClickBankConfig, httpClient *http.Client) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		store:   store,
		baseURL: cfg.BaseURL,
		devKey:  cfg.DevKey,
		client:  httpClient,
	}
}

// SaveCredentials 保存昵称与 clerk key，dev key 全局共用
func (s *Service) SaveCredentials(ctx context.Context, userID, nickname, clerkKey string) (*ConnectResult, error) {
	if userID == "" || nickname == "" || clerkKey == "" {
		return nil, errors.New("user_id, nickname and clerk_key are required")
	}
	err := s.store.SaveClickBankCreds(ctx, storage.ClickBankCreds{
		UserID:   userID,
		Nickname: nickname,
		ClerkKey: clerkKey,
	})
	if err != nil {
		return nil, err
	}
	logger.Log.WithField("user_id", userID).Info("ClickBank account connected")
	return &ConnectResult{Status: "success", Message: "ClickBank account connected."}, nil
}

// FetchSales 拉取账号销售汇总，返回 ClickBank 原始 JSON
func (s *Service) FetchSales(ctx context.Context, userID string, days int) (map[string]any, error) {
	if days <= 0 {
		days = DefaultDays
	}

	creds, err := s.store.GetClickBankCreds(ctx, userID)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotConnected
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid clickbank base url: %w", err)
	}
	u = u.JoinPath("analytics", "summary")
	q := u.Query()
	q.Set("accountId", creds.Nickname)
	q.Set("days", strconv.Itoa(days))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", s.devKey+":"+creds.ClerkKey)
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrAPI, string(data))
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}
	return out, nil
}
