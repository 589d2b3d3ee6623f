package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mercatto/backoffice/internal/rir/entity"
	"github.com/mercatto/backoffice/internal/rir/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rangeCacheTTL = 10 * time.Minute

// NQAService resolves quality levels and sampling plans from the NQA
// reference tables.
type NQAService struct {
	qualityLevelRepo *repository.QualityLevelRepository
	planRepo         *repository.SamplingPlanRepository
	rdb              *redis.Client
	logger           *zap.Logger
}

func NewNQAService(qualityLevelRepo *repository.QualityLevelRepository, planRepo *repository.SamplingPlanRepository) *NQAService {
	return &NQAService{
		qualityLevelRepo: qualityLevelRepo,
		planRepo:         planRepo,
		logger:           zap.NewNop(),
	}
}

// SetCache injects the optional redis client used to cache band tables.
func (s *NQAService) SetCache(rdb *redis.Client) {
	s.rdb = rdb
}

func (s *NQAService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// ResolveForGroup maps a product classification group to its quality level,
// falling back to the system default ("2,5"). A missing default is a fatal
// configuration error, surfaced as not-found.
func (s *NQAService) ResolveForGroup(ctx context.Context, grupoID string) (*entity.QualityLevel, error) {
	if grupoID != "" {
		mapping, err := s.qualityLevelRepo.FindActiveMappingByGroup(ctx, grupoID)
		if err == nil && mapping.QualityLevel != nil && mapping.QualityLevel.Ativo {
			return mapping.QualityLevel, nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	level, err := s.qualityLevelRepo.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: nenhum nível de qualidade padrão configurado", repository.ErrNotFound)
		}
		return nil, err
	}
	return level, nil
}

// SamplingPlan is the resolved plan for one quality level and lot size.
type SamplingPlan struct {
	QualityLevelID string `json:"quality_level_id"`
	FaixaInicial   int    `json:"faixaInicial"`
	FaixaFinal     int    `json:"faixaFinal"`
	TamanhoAmostra int    `json:"tamanhoAmostra"`
	AC             int    `json:"ac"`
	RE             int    `json:"re"`
	TamLote        int    `json:"tamLote"`
	Inspecao100    bool   `json:"inspecao100"`
	Recomendacao   string `json:"recomendacao"`
}

// ResolvePlan picks the band containing lotSize; outside the table it rounds
// up to the next band. The containing band always wins a boundary tie.
func (s *NQAService) ResolvePlan(ctx context.Context, qualityLevelID string, lotSize int) (*SamplingPlan, error) {
	if lotSize <= 0 {
		return nil, fmt.Errorf("%w: tamanho do lote deve ser um inteiro positivo", ErrValidation)
	}

	if _, err := s.qualityLevelRepo.FindByID(ctx, qualityLevelID); err != nil {
		return nil, err
	}

	ranges, err := s.activeRanges(ctx, qualityLevelID)
	if err != nil {
		return nil, err
	}

	var chosen *entity.SamplingPlanRange
	for i := range ranges {
		if ranges[i].Contains(lotSize) {
			chosen = &ranges[i]
			break
		}
	}
	if chosen == nil {
		// ranges are sorted by faixa_inicial: first band above is the next one up
		for i := range ranges {
			if ranges[i].FaixaInicial > lotSize {
				chosen = &ranges[i]
				break
			}
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: nenhum plano de amostragem para o nível de qualidade e tamanho de lote", repository.ErrNotFound)
	}

	plan := &SamplingPlan{
		QualityLevelID: qualityLevelID,
		FaixaInicial:   chosen.FaixaInicial,
		FaixaFinal:     chosen.FaixaFinal,
		TamanhoAmostra: chosen.TamanhoAmostra,
		AC:             chosen.AC,
		RE:             chosen.RE,
		TamLote:        lotSize,
		Inspecao100:    chosen.TamanhoAmostra >= lotSize,
	}
	if plan.Inspecao100 {
		plan.Recomendacao = fmt.Sprintf("Inspecionar 100%% das %d unidades", lotSize)
	} else {
		plan.Recomendacao = fmt.Sprintf("Inspecionar %d de %d unidades (AC: %d, RE: %d)",
			plan.TamanhoAmostra, lotSize, plan.AC, plan.RE)
	}
	return plan, nil
}

// activeRanges reads a level's band table through the redis cache when one is
// configured. Cache failures fall through to the database.
func (s *NQAService) activeRanges(ctx context.Context, qualityLevelID string) ([]entity.SamplingPlanRange, error) {
	key := "rir:nqa:ranges:" + qualityLevelID

	if s.rdb != nil {
		if payload, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached []entity.SamplingPlanRange
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Debug("NQA range cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	ranges, err := s.planRepo.FindActiveByLevel(ctx, qualityLevelID)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil && len(ranges) > 0 {
		if payload, err := json.Marshal(ranges); err == nil {
			if err := s.rdb.Set(ctx, key, payload, rangeCacheTTL).Err(); err != nil {
				s.logger.Debug("NQA range cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return ranges, nil
}
