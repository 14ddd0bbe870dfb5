package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/selector"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/conf"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/service"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/usecase"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/metrics"
)

func NewHTTPServer(c *conf.Server, auth *usecase.AuthUseCase, intel *service.IntelligenceService, cb *service.ClickBankService, logger log.Logger) *http.Server {
	ms := []middleware.Middleware{
		recovery.Recovery(),
		logging.Server(logger),
	}
	// 只有 ClickBank 接口需要 token
	if auth.Enabled() {
		ms = append(ms, selector.Server(jwt.Server(auth.Keyfunc)).Prefix("/clickbank/").Build())
	}

	var opts = []http.ServerOption{
		http.Middleware(ms...),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/")
	r.POST("/api/intelligence/analyze", intel.Analyze)
	r.POST("/api/intelligence/document", intel.AnalyzeDocument)
	r.POST("/api/intelligence/vsl", intel.AnalyzeVSL)
	r.POST("/api/intelligence/competitor", intel.AnalyzeCompetitor)
	r.GET("/api/intelligence/vsl/detect", intel.DetectVSL)
	// 固定路径需在 {id} 之前注册
	r.GET("/api/intelligence/health", intel.Health)
	r.GET("/api/intelligence/rag-availability", intel.RAGAvailability)
	r.GET("/api/intelligence/load-balancing", intel.LoadBalancing)
	r.GET("/api/intelligence/{id}", intel.Get)
	r.POST("/clickbank/connect", cb.Connect)
	r.GET("/clickbank/sales", cb.Sales)

	srv.Handle("/metrics", metrics.Handler())
	return srv
}
