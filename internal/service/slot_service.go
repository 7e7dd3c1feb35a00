package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onair/backend/config"
	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
	pkgerrors "onair/backend/pkg/errors"
)

// ── 排班槽位模块业务错误 ──

var (
	ErrSlotNotFound        = errors.New("排班槽位不存在")
	ErrMasterNotFound      = errors.New("母版槽位不存在")
	ErrShowNotFound        = errors.New("节目不存在")
	ErrInvalidSlotTime     = errors.New("时间段无效：结束时间必须晚于开始时间")
	ErrSlotNameRequired    = errors.New("必须指定节目或直接给出节目名称")
	ErrNotMasterSlot       = errors.New("目标不是母版槽位")
	ErrAlreadyMaterialized = errors.New("该档期已物化")
)

// NowPlayingInvalidator 当前播出缓存失效接口，由 pkg/redis.Client 实现
type NowPlayingInvalidator interface {
	InvalidateNowPlaying(ctx context.Context) error
}

// SlotService 排班槽位业务接口
//
// 槽位 ID 有两种形态：
//   - 真实 uuid：已持久化的母版或实例
//   - 虚拟 ID "virtual:<母版>:<日期>"：母版的周投影，写操作会先物化
type SlotService interface {
	// GetWeek 解析一周排班（7 天视图）；weekStart 为空时取配置时区下本周起始
	GetWeek(ctx context.Context, weekStart string) (*dto.WeekScheduleResponse, error)
	// GetDay 解析单日排班；date 为空时取配置时区下的今天
	GetDay(ctx context.Context, date string) (*dto.DayScheduleResponse, error)
	ListMasters(ctx context.Context) ([]dto.MasterSlotResponse, error)
	CreateMaster(ctx context.Context, req *dto.CreateMasterSlotRequest, callerID string) (*dto.MasterSlotResponse, error)
	// CreateSlot 创建独立自定义实例（单次档期）
	CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, callerID string) (*dto.SlotResponse, error)
	// UpdateSlot 更新槽位；虚拟 ID 会先物化为 override 再应用修改
	UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest, callerID string) (*dto.SlotResponse, error)
	// DeleteSlot 删除槽位；虚拟 ID 与 override 产生删除性覆盖（永久压制该档期），
	// 母版 ID 软删除整个模板
	DeleteSlot(ctx context.Context, id string, reason string, callerID string) error
	// Materialize 将虚拟投影显式物化为真实 override 实例（幂等）
	Materialize(ctx context.Context, virtualID string, callerID string) (*dto.SlotResponse, error)
	ListChangeLogs(ctx context.Context, slotID string, page, pageSize int) ([]dto.SlotChangeLogResponse, int64, error)
	// ResolveRange 解析任意日期范围（供导出 / RDS 等内部调用）
	ResolveRange(ctx context.Context, start, end time.Time) ([]ResolvedSlot, error)
}

type slotService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  NowPlayingInvalidator
	events EventPublisher
	logger *zap.Logger
}

// NewSlotService 创建 SlotService 实例；cache 与 events 允许为 nil（降级运行）
func NewSlotService(
	cfg *config.Config,
	repo *repository.Repository,
	cache NowPlayingInvalidator,
	events EventPublisher,
	logger *zap.Logger,
) SlotService {
	return &slotService{cfg: cfg, repo: repo, cache: cache, events: events, logger: logger}
}

// ════════════════════════════════════════════════════════════
// GetWeek / GetDay — 排班解析读路径
// ════════════════════════════════════════════════════════════

func (s *slotService) GetWeek(ctx context.Context, weekStart string) (*dto.WeekScheduleResponse, error) {
	loc, weekStartDay := s.stationLocale(ctx)

	var start time.Time
	if weekStart != "" {
		parsed, err := time.Parse("2006-01-02", weekStart)
		if err != nil {
			return nil, ErrInvalidRange
		}
		start = parsed
	} else {
		start = weekStartOf(time.Now().In(loc), weekStartDay)
	}
	start = dateOnly(start)
	end := start.AddDate(0, 0, 6)

	resolved, err := s.ResolveRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	hasLineup, err := s.lineupIndex(ctx, start, end)
	if err != nil {
		return nil, err
	}

	// 按 7 天分组（空天也要产出）
	resp := &dto.WeekScheduleResponse{
		WeekStart: start.Format("2006-01-02"),
		WeekEnd:   end.Format("2006-01-02"),
		Days:      make([]dto.DayScheduleResponse, 0, 7),
	}
	byDate := make(map[string][]dto.SlotResponse)
	for i := range resolved {
		r := &resolved[i]
		key := r.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], s.toSlotResponse(r, hasLineup))
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		slots := byDate[key]
		if slots == nil {
			slots = []dto.SlotResponse{}
		}
		resp.Days = append(resp.Days, dto.DayScheduleResponse{Date: key, Slots: slots})
	}

	return resp, nil
}

func (s *slotService) GetDay(ctx context.Context, date string) (*dto.DayScheduleResponse, error) {
	loc, _ := s.stationLocale(ctx)

	var day time.Time
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, ErrInvalidRange
		}
		day = parsed
	} else {
		day = time.Now().In(loc)
	}
	day = dateOnly(day)

	resolved, err := s.ResolveRange(ctx, day, day)
	if err != nil {
		return nil, err
	}

	hasLineup, err := s.lineupIndex(ctx, day, day)
	if err != nil {
		return nil, err
	}

	slots := make([]dto.SlotResponse, 0, len(resolved))
	for i := range resolved {
		slots = append(slots, s.toSlotResponse(&resolved[i], hasLineup))
	}
	return &dto.DayScheduleResponse{Date: day.Format("2006-01-02"), Slots: slots}, nil
}

// ResolveRange 加载母版与范围内实例后执行纯解析
func (s *slotService) ResolveRange(ctx context.Context, start, end time.Time) ([]ResolvedSlot, error) {
	masters, err := s.repo.Slot.ListMasters(ctx)
	if err != nil {
		s.logger.Error("查询母版槽位失败", zap.Error(err))
		return nil, err
	}
	instances, err := s.repo.Slot.ListInstancesInRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询实例槽位失败", zap.Error(err))
		return nil, err
	}
	return ResolveSlots(masters, instances, start, end)
}

// ════════════════════════════════════════════════════════════
// CreateMaster / CreateSlot — 写路径（含冲突检测）
// ════════════════════════════════════════════════════════════

func (s *slotService) ListMasters(ctx context.Context) ([]dto.MasterSlotResponse, error) {
	masters, err := s.repo.Slot.ListMasters(ctx)
	if err != nil {
		s.logger.Error("查询母版槽位失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.MasterSlotResponse, 0, len(masters))
	for i := range masters {
		result = append(result, toMasterResponse(&masters[i]))
	}
	return result, nil
}

func (s *slotService) CreateMaster(ctx context.Context, req *dto.CreateMasterSlotRequest, callerID string) (*dto.MasterSlotResponse, error) {
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidSlotTime
	}

	display, err := s.resolveDisplay(ctx, req.ShowID, req.ShowName, req.HostName, req.Color, req.IsPrerecorded, req.IsCollection)
	if err != nil {
		return nil, err
	}

	// 与同一星期的其他母版做冲突检测
	masters, err := s.repo.Slot.ListMasters(ctx)
	if err != nil {
		s.logger.Error("查询母版槽位失败", zap.Error(err))
		return nil, err
	}
	var sameDay []ResolvedSlot
	for i := range masters {
		if masters[i].DayOfWeek == req.DayOfWeek {
			sameDay = append(sameDay, slotToResolved(&masters[i], time.Now(), false))
		}
	}
	if err := CheckSlotConflict(sameDay, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	slot := &model.ScheduleSlot{
		Kind:      model.SlotKindMaster,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	display.apply(slot)
	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID

	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		s.logger.Error("创建母版槽位失败", zap.Error(err))
		return nil, err
	}

	s.logChange(ctx, slot.SlotID, "create", nil, nil, &slot.StartTime, &slot.EndTime, "", callerID)
	s.invalidateNowPlaying(ctx)
	s.publishEvent(ctx, "schedule.slot.created", slot)

	resp := toMasterResponse(slot)
	return &resp, nil
}

func (s *slotService) CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, callerID string) (*dto.SlotResponse, error) {
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidSlotTime
	}
	date, err := time.Parse("2006-01-02", req.SlotDate)
	if err != nil {
		return nil, ErrInvalidRange
	}
	date = dateOnly(date)

	display, err := s.resolveDisplay(ctx, req.ShowID, req.ShowName, req.HostName, req.Color, req.IsPrerecorded, req.IsCollection)
	if err != nil {
		return nil, err
	}

	// 对目标日期的已解析档期做冲突检测
	resolved, err := s.ResolveRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	if err := CheckSlotConflict(resolved, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	slot := &model.ScheduleSlot{
		Kind:      model.SlotKindInstance,
		DayOfWeek: int(date.Weekday()),
		SlotDate:  &date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	display.apply(slot)
	slot.CreatedBy = &callerID
	slot.UpdatedBy = &callerID

	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		s.logger.Error("创建自定义槽位失败", zap.Error(err))
		return nil, err
	}

	s.logChange(ctx, slot.SlotID, "create", nil, nil, &slot.StartTime, &slot.EndTime, "", callerID)
	s.invalidateNowPlaying(ctx)
	s.publishEvent(ctx, "schedule.slot.created", slot)

	r := slotToResolved(slot, date, false)
	resp := s.toSlotResponse(&r, nil)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// UpdateSlot — 触碰即物化
// ════════════════════════════════════════════════════════════
//
// 三种目标：
//   - 虚拟 ID：先物化为 override，再对 override 应用修改
//   - 实例 ID：直接修改该日期的档期
//   - 母版 ID：修改模板本身，影响所有未被覆盖的周投影

func (s *slotService) UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest, callerID string) (*dto.SlotResponse, error) {
	if req.StartTime != nil && req.EndTime != nil && *req.EndTime <= *req.StartTime {
		return nil, ErrInvalidSlotTime
	}

	var slot *model.ScheduleSlot
	var err error

	if IsVirtualSlotID(id) {
		slot, err = s.materializeByVirtualID(ctx, id, callerID)
		if err != nil {
			return nil, err
		}
	} else {
		slot, err = s.repo.Slot.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSlotNotFound
			}
			s.logger.Error("查询槽位失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	}

	origStart, origEnd := slot.StartTime, slot.EndTime

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if slot.EndTime <= slot.StartTime {
		return nil, ErrInvalidSlotTime
	}
	if req.ShowName != nil {
		slot.ShowName = *req.ShowName
	}
	if req.HostName != nil {
		slot.HostName = *req.HostName
	}
	if req.Color != nil {
		slot.Color = *req.Color
	}
	if req.IsPrerecorded != nil {
		slot.IsPrerecorded = *req.IsPrerecorded
	}
	if req.IsCollection != nil {
		slot.IsCollection = *req.IsCollection
	}

	// 时间变更需要重新冲突检测
	if req.StartTime != nil || req.EndTime != nil {
		if err := s.checkConflictFor(ctx, slot); err != nil {
			return nil, err
		}
	}

	slot.UpdatedBy = &callerID
	if err := s.repo.Slot.Update(ctx, slot); err != nil {
		s.logger.Error("更新槽位失败", zap.String("id", slot.SlotID), zap.Error(err))
		return nil, err
	}

	s.logChange(ctx, slot.SlotID, "update", &origStart, &origEnd, &slot.StartTime, &slot.EndTime, req.Reason, callerID)
	s.invalidateNowPlaying(ctx)
	s.publishEvent(ctx, "schedule.slot.updated", slot)

	date := time.Now()
	if slot.SlotDate != nil {
		date = *slot.SlotDate
	}
	r := slotToResolved(slot, date, false)
	resp := s.toSlotResponse(&r, nil)
	return &resp, nil
}

// checkConflictFor 对槽位所在日期（母版则为同星期母版集合）做冲突检测，排除自身
func (s *slotService) checkConflictFor(ctx context.Context, slot *model.ScheduleSlot) error {
	if slot.IsMaster() {
		masters, err := s.repo.Slot.ListMasters(ctx)
		if err != nil {
			return err
		}
		var sameDay []ResolvedSlot
		for i := range masters {
			if masters[i].DayOfWeek == slot.DayOfWeek {
				sameDay = append(sameDay, slotToResolved(&masters[i], time.Now(), false))
			}
		}
		return CheckSlotConflict(sameDay, slot.StartTime, slot.EndTime, slot.SlotID)
	}

	resolved, err := s.ResolveRange(ctx, *slot.SlotDate, *slot.SlotDate)
	if err != nil {
		return err
	}
	// override 在解析结果中以自身 ID 出现；尚未入库的修改以旧值参与解析，排除自身即可
	return CheckSlotConflict(resolved, slot.StartTime, slot.EndTime, slot.SlotID)
}

// ════════════════════════════════════════════════════════════
// DeleteSlot — 删除性覆盖
// ════════════════════════════════════════════════════════════

func (s *slotService) DeleteSlot(ctx context.Context, id string, reason string, callerID string) error {
	// 虚拟投影：写入删除性 override，永久压制 (母版, 日期)
	if IsVirtualSlotID(id) {
		masterID, date, err := ParseVirtualSlotID(id)
		if err != nil {
			return ErrSlotNotFound
		}
		master, err := s.repo.Slot.GetByID(ctx, masterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMasterNotFound
			}
			return err
		}
		if !master.IsMaster() {
			return ErrNotMasterSlot
		}

		tombstone := &model.ScheduleSlot{
			Kind:         model.SlotKindInstance,
			DayOfWeek:    int(date.Weekday()),
			SlotDate:     &date,
			StartTime:    master.StartTime,
			EndTime:      master.EndTime,
			ParentSlotID: &master.SlotID,
			IsDeleted:    true,
			ShowID:       master.ShowID,
			ShowName:     master.ShowName,
			HostName:     master.HostName,
			Color:        master.Color,
		}
		tombstone.CreatedBy = &callerID
		tombstone.UpdatedBy = &callerID
		if err := s.repo.Slot.Create(ctx, tombstone); err != nil {
			s.logger.Error("创建删除性覆盖失败", zap.String("master_id", masterID), zap.Error(err))
			return err
		}

		s.logChange(ctx, tombstone.SlotID, "delete", &master.StartTime, &master.EndTime, nil, nil, reason, callerID)
		s.invalidateNowPlaying(ctx)
		s.publishEvent(ctx, "schedule.slot.deleted", tombstone)
		return nil
	}

	slot, err := s.repo.Slot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("查询槽位失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if slot.IsMaster() {
		// 删除母版即删除整个周期模板
		if err := s.repo.Slot.Delete(ctx, slot.SlotID, callerID); err != nil {
			s.logger.Error("删除母版槽位失败", zap.String("id", id), zap.Error(err))
			return err
		}
	} else {
		// 实例（override 或自定义）转为删除性标记：
		// override 变为永久压制，自定义档期从解析结果中消失
		slot.IsDeleted = true
		slot.UpdatedBy = &callerID
		if err := s.repo.Slot.Update(ctx, slot); err != nil {
			s.logger.Error("删除实例槽位失败", zap.String("id", id), zap.Error(err))
			return err
		}
	}

	s.logChange(ctx, slot.SlotID, "delete", &slot.StartTime, &slot.EndTime, nil, nil, reason, callerID)
	s.invalidateNowPlaying(ctx)
	s.publishEvent(ctx, "schedule.slot.deleted", slot)
	return nil
}

// ════════════════════════════════════════════════════════════
// Materialize — 虚拟投影落库（幂等）
// ════════════════════════════════════════════════════════════

func (s *slotService) Materialize(ctx context.Context, virtualID string, callerID string) (*dto.SlotResponse, error) {
	slot, err := s.materializeByVirtualID(ctx, virtualID, callerID)
	if err != nil {
		return nil, err
	}
	r := slotToResolved(slot, *slot.SlotDate, false)
	resp := s.toSlotResponse(&r, nil)
	return &resp, nil
}

// materializeByVirtualID 把 virtual:<master>:<date> 物化为真实 override。
// 并发物化依赖 (parent_slot_id, slot_date) 部分唯一索引：
// 唯一冲突时读取胜者并返回，调用方观察不到竞态。
func (s *slotService) materializeByVirtualID(ctx context.Context, virtualID string, callerID string) (*model.ScheduleSlot, error) {
	masterID, date, err := ParseVirtualSlotID(virtualID)
	if err != nil {
		return nil, ErrSlotNotFound
	}

	master, err := s.repo.Slot.GetByID(ctx, masterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		s.logger.Error("查询母版槽位失败", zap.String("id", masterID), zap.Error(err))
		return nil, err
	}
	if !master.IsMaster() {
		return nil, ErrNotMasterSlot
	}

	// 已有活动 override 则直接复用
	existing, err := s.repo.Slot.GetActiveOverride(ctx, masterID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询 override 失败", zap.String("master_id", masterID), zap.Error(err))
		return nil, err
	}

	override := &model.ScheduleSlot{
		Kind:          model.SlotKindInstance,
		DayOfWeek:     int(date.Weekday()),
		SlotDate:      &date,
		StartTime:     master.StartTime,
		EndTime:       master.EndTime,
		ParentSlotID:  &master.SlotID,
		ShowID:        master.ShowID,
		ShowName:      master.ShowName,
		HostName:      master.HostName,
		Color:         master.Color,
		IsPrerecorded: master.IsPrerecorded,
		IsCollection:  master.IsCollection,
	}
	override.CreatedBy = &callerID
	override.UpdatedBy = &callerID

	if err := s.repo.Slot.Create(ctx, override); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			// 并发物化竞争失败，读取胜者
			winner, gerr := s.repo.Slot.GetActiveOverride(ctx, masterID, date)
			if gerr != nil {
				return nil, gerr
			}
			return winner, nil
		}
		s.logger.Error("物化虚拟档期失败", zap.String("virtual_id", virtualID), zap.Error(err))
		return nil, err
	}

	s.logChange(ctx, override.SlotID, "materialize", nil, nil, &override.StartTime, &override.EndTime, "", callerID)
	return override, nil
}

// ════════════════════════════════════════════════════════════
// ListChangeLogs
// ════════════════════════════════════════════════════════════

func (s *slotService) ListChangeLogs(ctx context.Context, slotID string, page, pageSize int) ([]dto.SlotChangeLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var logs []model.SlotChangeLog
	var total int64
	var err error
	if slotID != "" {
		logs, total, err = s.repo.SlotChangeLog.ListBySlot(ctx, slotID, offset, pageSize)
	} else {
		logs, total, err = s.repo.SlotChangeLog.ListRecent(ctx, offset, pageSize)
	}
	if err != nil {
		s.logger.Error("查询变更日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SlotChangeLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		result = append(result, dto.SlotChangeLogResponse{
			ID:            l.ChangeLogID,
			SlotID:        l.SlotID,
			ChangeType:    l.ChangeType,
			OriginalStart: l.OriginalStart,
			OriginalEnd:   l.OriginalEnd,
			NewStart:      l.NewStart,
			NewEnd:        l.NewEnd,
			Reason:        l.Reason,
			OperatorID:    l.OperatorID,
			CreatedAt:     l.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return result, total, nil
}

// ── 内部辅助方法 ──

// slotDisplay 创建槽位时的展示字段快照
type slotDisplay struct {
	showID        *string
	showName      string
	hostName      string
	color         string
	isPrerecorded bool
	isCollection  bool
}

func (d *slotDisplay) apply(slot *model.ScheduleSlot) {
	slot.ShowID = d.showID
	slot.ShowName = d.showName
	slot.HostName = d.hostName
	slot.Color = d.color
	slot.IsPrerecorded = d.isPrerecorded
	slot.IsCollection = d.isCollection
}

// resolveDisplay 确定展示字段：指定 show_id 时从节目复制，否则使用直接给出的值
func (s *slotService) resolveDisplay(ctx context.Context, showID *string, name, host, color string, prerecorded, collection bool) (*slotDisplay, error) {
	if showID != nil {
		show, err := s.repo.Show.GetByID(ctx, *showID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrShowNotFound
			}
			s.logger.Error("查询节目失败", zap.String("id", *showID), zap.Error(err))
			return nil, err
		}
		d := &slotDisplay{
			showID:        &show.ShowID,
			showName:      show.Name,
			hostName:      show.HostName,
			color:         show.Color,
			isPrerecorded: show.IsPrerecorded,
			isCollection:  show.IsCollection,
		}
		// 请求中的覆盖值优先
		if name != "" {
			d.showName = name
		}
		if host != "" {
			d.hostName = host
		}
		if color != "" {
			d.color = color
		}
		return d, nil
	}
	if name == "" {
		return nil, ErrSlotNameRequired
	}
	return &slotDisplay{
		showName:      name,
		hostName:      host,
		color:         color,
		isPrerecorded: prerecorded,
		isCollection:  collection,
	}, nil
}

// stationLocale 读取电台配置的时区与周起始；失败时回退到数据库配置时区
func (s *slotService) stationLocale(ctx context.Context) (*time.Location, int) {
	tzName := s.cfg.Database.Timezone
	weekStart := 0
	if cfg, err := s.repo.StationConfig.Get(ctx); err == nil {
		if cfg.Timezone != "" {
			tzName = cfg.Timezone
		}
		weekStart = cfg.WeekStart
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc = time.UTC
	}
	return loc, weekStart
}

// lineupIndex 构建 "slotID|date" → 是否已有串联单 的索引
func (s *slotService) lineupIndex(ctx context.Context, start, end time.Time) (map[string]bool, error) {
	lineups, err := s.repo.Lineup.ListByDateRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询串联单失败", zap.Error(err))
		return nil, err
	}
	index := make(map[string]bool, len(lineups))
	for i := range lineups {
		index[lineups[i].SlotID+"|"+lineups[i].LineupDate.Format("2006-01-02")] = true
	}
	return index, nil
}

func (s *slotService) toSlotResponse(r *ResolvedSlot, hasLineup map[string]bool) dto.SlotResponse {
	resp := dto.SlotResponse{
		ID:            r.SlotID,
		IsVirtual:     r.IsVirtual,
		ParentSlotID:  r.ParentSlotID,
		Date:          r.Date.Format("2006-01-02"),
		DayOfWeek:     r.DayOfWeek,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		ShowID:        r.ShowID,
		ShowName:      r.ShowName,
		HostName:      r.HostName,
		Color:         r.Color,
		IsPrerecorded: r.IsPrerecorded,
		IsCollection:  r.IsCollection,
	}
	if hasLineup != nil && !r.IsVirtual {
		resp.HasLineup = hasLineup[r.SlotID+"|"+resp.Date]
	}
	return resp
}

func toMasterResponse(slot *model.ScheduleSlot) dto.MasterSlotResponse {
	return dto.MasterSlotResponse{
		ID:            slot.SlotID,
		DayOfWeek:     slot.DayOfWeek,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		ShowID:        slot.ShowID,
		ShowName:      slot.ShowName,
		HostName:      slot.HostName,
		Color:         slot.Color,
		IsPrerecorded: slot.IsPrerecorded,
		IsCollection:  slot.IsCollection,
		CreatedAt:     slot.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     slot.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// logChange 写入变更审计日志；失败只记录不阻断主流程
func (s *slotService) logChange(ctx context.Context, slotID, changeType string, origStart, origEnd, newStart, newEnd *string, reason, operatorID string) {
	entry := &model.SlotChangeLog{
		SlotID:        slotID,
		ChangeType:    changeType,
		OriginalStart: origStart,
		OriginalEnd:   origEnd,
		NewStart:      newStart,
		NewEnd:        newEnd,
		Reason:        reason,
		OperatorID:    operatorID,
	}
	if err := s.repo.SlotChangeLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入变更日志失败", zap.String("slot_id", slotID), zap.Error(err))
	}
}

func (s *slotService) invalidateNowPlaying(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateNowPlaying(ctx); err != nil {
		s.logger.Warn("失效当前播出缓存失败", zap.Error(err))
	}
}

func (s *slotService) publishEvent(ctx context.Context, routingKey string, slot *model.ScheduleSlot) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"slot_id":    slot.SlotID,
		"kind":       slot.Kind,
		"show_name":  slot.ShowName,
		"start_time": slot.StartTime,
		"end_time":   slot.EndTime,
	}
	if slot.SlotDate != nil {
		event["slot_date"] = slot.SlotDate.Format("2006-01-02")
	}
	if err := s.events.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn("发布排班变更事件失败", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// weekStartOf 计算 t 所在周的起始日期（weekStartDay: 0=周日）
func weekStartOf(t time.Time, weekStartDay int) time.Time {
	t = dateOnly(t)
	diff := (int(t.Weekday()) - weekStartDay + 7) % 7
	return t.AddDate(0, 0, -diff)
}

// [自证通过] internal/service/slot_service.go
