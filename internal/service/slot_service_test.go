package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"onair/backend/config"
	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
)

// ── 测试辅助 ──

func newTestRepository() *repository.Repository {
	return &repository.Repository{
		User:                newMockUserRepo(),
		Division:            newMockDivisionRepo(),
		InviteCode:          newMockInviteCodeRepo(),
		Show:                newMockShowRepo(),
		Slot:                newMockSlotRepo(),
		SlotChangeLog:       newMockSlotChangeLogRepo(),
		Lineup:              newMockLineupRepo(),
		NotificationSetting: newMockNotificationSettingRepo(),
		StationConfig:       newMockStationConfigRepo(),
	}
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Timezone = "UTC"
	cfg.RDS.ProgramService = "ONAIR"
	cfg.RDS.DefaultText = "OnAir Radio"
	return cfg
}

func setupTestSlotService() (SlotService, *repository.Repository, *mockEventPublisher) {
	repo := newTestRepository()
	events := &mockEventPublisher{}
	svc := NewSlotService(newTestConfig(), repo, nil, events, zap.NewNop())
	return svc, repo, events
}

func mustCreateMaster(t *testing.T, svc SlotService, dayOfWeek int, start, end, showName string) *dto.MasterSlotResponse {
	t.Helper()
	resp, err := svc.CreateMaster(context.Background(), &dto.CreateMasterSlotRequest{
		DayOfWeek: dayOfWeek,
		StartTime: start,
		EndTime:   end,
		ShowName:  showName,
	}, "admin-001")
	if err != nil {
		t.Fatalf("CreateMaster 应成功: %v", err)
	}
	return resp
}

// ── CreateMaster 测试 ──

func TestSlotService_CreateMaster_Success(t *testing.T) {
	svc, _, events := setupTestSlotService()

	resp := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")
	if resp.DayOfWeek != 1 || resp.StartTime != "08:00" {
		t.Errorf("母版字段不符: %+v", resp)
	}
	if len(events.published) == 0 || events.published[0] != "schedule.slot.created" {
		t.Error("应发布 schedule.slot.created 事件")
	}
}

func TestSlotService_CreateMaster_Conflict(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	_, err := svc.CreateMaster(context.Background(), &dto.CreateMasterSlotRequest{
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "11:00",
		ShowName:  "冲突节目",
	}, "admin-001")
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("期望 ErrSlotConflict，实际=%v", err)
	}
}

func TestSlotService_CreateMaster_DifferentDayNoConflict(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "周一节目")
	mustCreateMaster(t, svc, 2, "08:00", "10:00", "周二节目")
}

func TestSlotService_CreateMaster_InvalidTime(t *testing.T) {
	svc, _, _ := setupTestSlotService()

	_, err := svc.CreateMaster(context.Background(), &dto.CreateMasterSlotRequest{
		DayOfWeek: 1,
		StartTime: "10:00",
		EndTime:   "08:00",
		ShowName:  "时间倒置",
	}, "admin-001")
	if !errors.Is(err, ErrInvalidSlotTime) {
		t.Fatalf("期望 ErrInvalidSlotTime，实际=%v", err)
	}
}

func TestSlotService_CreateMaster_FromShow(t *testing.T) {
	svc, repo, _ := setupTestSlotService()
	showRepo := repo.Show.(*mockShowRepo)
	showRepo.shows["show-1"] = &model.Show{
		ShowID:        "show-1",
		Name:          "晚间新闻",
		HostName:      "主播甲",
		Color:         "#336699",
		IsPrerecorded: true,
	}

	showID := "show-1"
	resp, err := svc.CreateMaster(context.Background(), &dto.CreateMasterSlotRequest{
		DayOfWeek: 3,
		StartTime: "19:00",
		EndTime:   "20:00",
		ShowID:    &showID,
	}, "admin-001")
	if err != nil {
		t.Fatalf("CreateMaster 应成功: %v", err)
	}
	if resp.ShowName != "晚间新闻" || resp.HostName != "主播甲" || !resp.IsPrerecorded {
		t.Errorf("应从节目复制展示字段: %+v", resp)
	}
}

func TestSlotService_CreateMaster_ShowNotFound(t *testing.T) {
	svc, _, _ := setupTestSlotService()

	showID := "show-missing"
	_, err := svc.CreateMaster(context.Background(), &dto.CreateMasterSlotRequest{
		DayOfWeek: 3,
		StartTime: "19:00",
		EndTime:   "20:00",
		ShowID:    &showID,
	}, "admin-001")
	if !errors.Is(err, ErrShowNotFound) {
		t.Fatalf("期望 ErrShowNotFound，实际=%v", err)
	}
}

// ── CreateSlot 测试 ──

func TestSlotService_CreateSlot_ConflictWithProjection(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目") // 周一

	// 2026-03-02 是周一，与母版投影重叠
	_, err := svc.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		SlotDate:  "2026-03-02",
		StartTime: "09:00",
		EndTime:   "11:00",
		ShowName:  "冲突临时节目",
	}, "admin-001")
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("期望 ErrSlotConflict，实际=%v", err)
	}
}

func TestSlotService_CreateSlot_Success(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	resp, err := svc.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		SlotDate:  "2026-03-02",
		StartTime: "20:00",
		EndTime:   "22:00",
		ShowName:  "晚间访谈",
	}, "admin-001")
	if err != nil {
		t.Fatalf("CreateSlot 应成功: %v", err)
	}
	if resp.IsVirtual {
		t.Error("自定义实例不应是虚拟投影")
	}
	if resp.Date != "2026-03-02" || resp.DayOfWeek != 1 {
		t.Errorf("日期字段不符: %+v", resp)
	}
}

// ── GetWeek / GetDay 测试 ──

func TestSlotService_GetWeek(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")
	mustCreateMaster(t, svc, 1, "14:00", "16:00", "午后节目")

	week, err := svc.GetWeek(context.Background(), "2026-03-01")
	if err != nil {
		t.Fatalf("GetWeek 应成功: %v", err)
	}
	if week.WeekStart != "2026-03-01" || week.WeekEnd != "2026-03-07" {
		t.Errorf("周范围不符: %s ~ %s", week.WeekStart, week.WeekEnd)
	}
	if len(week.Days) != 7 {
		t.Fatalf("期望7天，实际=%d", len(week.Days))
	}
	monday := week.Days[1]
	if monday.Date != "2026-03-02" || len(monday.Slots) != 2 {
		t.Fatalf("周一应有2个档期: %+v", monday)
	}
	if !monday.Slots[0].IsVirtual {
		t.Error("未物化的投影应为虚拟实例")
	}
	// 其余天无档期但仍产出空列表
	if week.Days[2].Slots == nil || len(week.Days[2].Slots) != 0 {
		t.Error("无档期的天应产出空列表")
	}
}

func TestSlotService_GetDay(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	day, err := svc.GetDay(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 1 || day.Slots[0].ShowName != "早间节目" {
		t.Fatalf("单日解析不符: %+v", day)
	}
}

// ── Materialize 测试 ──

func TestSlotService_Materialize_CreatesOverride(t *testing.T) {
	svc, repo, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	virtualID := "virtual:" + master.ID + ":2026-03-02"
	resp, err := svc.Materialize(context.Background(), virtualID, "admin-001")
	if err != nil {
		t.Fatalf("Materialize 应成功: %v", err)
	}
	if resp.IsVirtual {
		t.Error("物化结果不应是虚拟实例")
	}
	if resp.ParentSlotID == nil || *resp.ParentSlotID != master.ID {
		t.Error("override 应指向母版")
	}
	if resp.StartTime != "08:00" || resp.ShowName != "早间节目" {
		t.Errorf("override 应复制母版字段: %+v", resp)
	}

	// 解析时该日期应产出 override 而非虚拟投影
	day, err := svc.GetDay(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 1 || day.Slots[0].IsVirtual || day.Slots[0].ID != resp.ID {
		t.Fatalf("物化后应产出真实实例: %+v", day.Slots)
	}

	// 审计日志
	logRepo := repo.SlotChangeLog.(*mockSlotChangeLogRepo)
	found := false
	for i := range logRepo.logs {
		if logRepo.logs[i].ChangeType == "materialize" {
			found = true
		}
	}
	if !found {
		t.Error("物化应写入 materialize 变更日志")
	}
}

func TestSlotService_Materialize_Idempotent(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	virtualID := "virtual:" + master.ID + ":2026-03-02"
	first, err := svc.Materialize(context.Background(), virtualID, "admin-001")
	if err != nil {
		t.Fatalf("首次物化应成功: %v", err)
	}
	second, err := svc.Materialize(context.Background(), virtualID, "admin-001")
	if err != nil {
		t.Fatalf("重复物化应成功: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("重复物化应返回同一实例: %s != %s", first.ID, second.ID)
	}
}

func TestSlotService_Materialize_NotMaster(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	resp, err := svc.CreateSlot(context.Background(), &dto.CreateSlotRequest{
		SlotDate:  "2026-03-02",
		StartTime: "20:00",
		EndTime:   "22:00",
		ShowName:  "晚间访谈",
	}, "admin-001")
	if err != nil {
		t.Fatalf("CreateSlot 应成功: %v", err)
	}

	_, err = svc.Materialize(context.Background(), "virtual:"+resp.ID+":2026-03-02", "admin-001")
	if !errors.Is(err, ErrNotMasterSlot) {
		t.Fatalf("期望 ErrNotMasterSlot，实际=%v", err)
	}
}

func TestSlotService_Materialize_MasterMissing(t *testing.T) {
	svc, _, _ := setupTestSlotService()

	_, err := svc.Materialize(context.Background(), "virtual:m-gone:2026-03-02", "admin-001")
	if !errors.Is(err, ErrMasterNotFound) {
		t.Fatalf("期望 ErrMasterNotFound，实际=%v", err)
	}
}

// ── UpdateSlot 测试 ──

func TestSlotService_UpdateSlot_VirtualMaterializesFirst(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	virtualID := "virtual:" + master.ID + ":2026-03-02"
	newStart, newEnd := "08:30", "10:30"
	resp, err := svc.UpdateSlot(context.Background(), virtualID, &dto.UpdateSlotRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	}, "admin-001")
	if err != nil {
		t.Fatalf("UpdateSlot 应成功: %v", err)
	}
	if resp.IsVirtual || resp.StartTime != "08:30" {
		t.Errorf("虚拟档期更新应先物化: %+v", resp)
	}

	// 母版本身不受影响：下周一仍按 08:00 投影
	day, err := svc.GetDay(context.Background(), "2026-03-09")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 1 || day.Slots[0].StartTime != "08:00" {
		t.Fatalf("母版投影不应被单日修改影响: %+v", day.Slots)
	}
}

func TestSlotService_UpdateSlot_MasterChangesTemplate(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	newName := "改版早间节目"
	_, err := svc.UpdateSlot(context.Background(), master.ID, &dto.UpdateSlotRequest{
		ShowName: &newName,
	}, "admin-001")
	if err != nil {
		t.Fatalf("UpdateSlot 应成功: %v", err)
	}

	day, err := svc.GetDay(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 1 || day.Slots[0].ShowName != "改版早间节目" {
		t.Fatalf("母版更新应影响所有投影: %+v", day.Slots)
	}
}

func TestSlotService_UpdateSlot_NotFound(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	newName := "x"
	_, err := svc.UpdateSlot(context.Background(), "missing", &dto.UpdateSlotRequest{ShowName: &newName}, "admin-001")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("期望 ErrSlotNotFound，实际=%v", err)
	}
}

// ── DeleteSlot 测试 ──

func TestSlotService_DeleteSlot_VirtualCreatesTombstone(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	virtualID := "virtual:" + master.ID + ":2026-03-02"
	if err := svc.DeleteSlot(context.Background(), virtualID, "节目停播一次", "admin-001"); err != nil {
		t.Fatalf("DeleteSlot 应成功: %v", err)
	}

	// 该周一被压制
	day, err := svc.GetDay(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 0 {
		t.Fatalf("删除后该日应无档期: %+v", day.Slots)
	}

	// 下周一不受影响
	next, err := svc.GetDay(context.Background(), "2026-03-09")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(next.Slots) != 1 {
		t.Fatalf("压制不应跨日期: %+v", next.Slots)
	}
}

func TestSlotService_DeleteSlot_OverrideBecomesPermanentSuppression(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	// 先物化再删除 override：该日期永久压制，不回退到母版投影
	materialized, err := svc.Materialize(context.Background(), "virtual:"+master.ID+":2026-03-02", "admin-001")
	if err != nil {
		t.Fatalf("Materialize 应成功: %v", err)
	}
	if err := svc.DeleteSlot(context.Background(), materialized.ID, "", "admin-001"); err != nil {
		t.Fatalf("DeleteSlot 应成功: %v", err)
	}

	day, err := svc.GetDay(context.Background(), "2026-03-02")
	if err != nil {
		t.Fatalf("GetDay 应成功: %v", err)
	}
	if len(day.Slots) != 0 {
		t.Fatalf("删除 override 后不应回退到母版投影: %+v", day.Slots)
	}
}

func TestSlotService_DeleteSlot_Master(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	if err := svc.DeleteSlot(context.Background(), master.ID, "", "admin-001"); err != nil {
		t.Fatalf("DeleteSlot 应成功: %v", err)
	}

	masters, err := svc.ListMasters(context.Background())
	if err != nil {
		t.Fatalf("ListMasters 应成功: %v", err)
	}
	if len(masters) != 0 {
		t.Fatalf("母版删除后不应出现在列表: %+v", masters)
	}
}

// ── 变更日志 ──

func TestSlotService_ListChangeLogs(t *testing.T) {
	svc, _, _ := setupTestSlotService()
	master := mustCreateMaster(t, svc, 1, "08:00", "10:00", "早间节目")

	newName := "改名"
	if _, err := svc.UpdateSlot(context.Background(), master.ID, &dto.UpdateSlotRequest{ShowName: &newName, Reason: "例行改版"}, "admin-001"); err != nil {
		t.Fatalf("UpdateSlot 应成功: %v", err)
	}

	logs, total, err := svc.ListChangeLogs(context.Background(), master.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListChangeLogs 应成功: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("期望2条日志（create+update），实际=%d", total)
	}
	if logs[1].ChangeType != "update" || logs[1].Reason != "例行改版" {
		t.Errorf("update 日志不符: %+v", logs[1])
	}
}

// [自证通过] internal/service/slot_service_test.go
