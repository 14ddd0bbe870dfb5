package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/usecase"
)

type IntelligenceService struct {
	uc  *usecase.IntelligenceUseCase
	log *log.Helper
}

func NewIntelligenceService(uc *usecase.IntelligenceUseCase, logger log.Logger) *IntelligenceService {
	return &IntelligenceService{uc: uc, log: log.NewHelper(logger)}
}

// Analyze POST /api/intelligence/analyze
func (s *IntelligenceService) Analyze(ctx http.Context) error {
	var in usecase.AnalyzeInput
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		return s.uc.Analyze(c, req.(*usecase.AnalyzeInput))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// AnalyzeDocument POST /api/intelligence/document
func (s *IntelligenceService) AnalyzeDocument(ctx http.Context) error {
	var in usecase.DocumentInput
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		return s.uc.AnalyzeDocument(c, req.(*usecase.DocumentInput))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// DetectVSL GET /api/intelligence/vsl/detect?url=
func (s *IntelligenceService) DetectVSL(ctx http.Context) error {
	pageURL := ctx.Query().Get("url")
	h := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return s.uc.DetectVSL(c, pageURL)
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// AnalyzeVSL POST /api/intelligence/vsl
func (s *IntelligenceService) AnalyzeVSL(ctx http.Context) error {
	var in usecase.VSLInput
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		return s.uc.AnalyzeVSL(c, req.(*usecase.VSLInput))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// AnalyzeCompetitor POST /api/intelligence/competitor
func (s *IntelligenceService) AnalyzeCompetitor(ctx http.Context) error {
	var in usecase.CompetitorInput
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		return s.uc.AnalyzeCompetitor(c, req.(*usecase.CompetitorInput))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// Get GET /api/intelligence/{id}
func (s *IntelligenceService) Get(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	h := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return s.uc.Get(c, id)
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// Health GET /api/intelligence/health
func (s *IntelligenceService) Health(ctx http.Context) error {
	return ctx.Result(200, s.uc.Health())
}

// RAGAvailability GET /api/intelligence/rag-availability
func (s *IntelligenceService) RAGAvailability(ctx http.Context) error {
	return ctx.Result(200, s.uc.RAGAvailability())
}

// LoadBalancing GET /api/intelligence/load-balancing
func (s *IntelligenceService) LoadBalancing(ctx http.Context) error {
	return ctx.Result(200, s.uc.LoadBalancing())
}
