package main

import (
	"context"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/conf"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/data"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/server"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/service"
	"github.com/iWorld-y/intel_radar/app/gateway/internal/usecase"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/clickbank"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
)

// initApp 手动组装依赖
func initApp(cs *conf.Server, cd *conf.Data, ca *conf.Auth, radar *config.Config, logger log.Logger) (*kratos.App, func(), error) {
	eng, cleanupEngine, err := server.NewRadarEngine(context.Background(), radar, logger)
	if err != nil {
		return nil, nil, err
	}
	d, cleanupData, err := data.NewData(cd, logger)
	if err != nil {
		cleanupEngine()
		return nil, nil, err
	}

	intelUC := usecase.NewIntelligenceUseCase(eng, data.NewIntelligenceRepo(d, logger), logger)

	// 未配置数据库时 ClickBank 接口统一返回 400
	var sales usecase.SalesService
	if store := d.Store(); store != nil {
		sales = clickbank.NewService(store, radar.ClickBank, nil)
	}
	cbUC := usecase.NewClickBankUseCase(sales, logger)
	auth := usecase.NewAuthUseCase(ca)

	hs := server.NewHTTPServer(cs, auth,
		service.NewIntelligenceService(intelUC, logger),
		service.NewClickBankService(cbUC, auth, logger),
		logger,
	)

	app := newApp(logger, hs)
	return app, func() {
		cleanupData()
		cleanupEngine()
	}, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
