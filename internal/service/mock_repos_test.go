package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"onair/backend/internal/model"
	pkgerrors "onair/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, divisionID string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if divisionID != "" && (u.DivisionID == nil || *u.DivisionID != divisionID) {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) ListByDivision(_ context.Context, divisionID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.DivisionID != nil && *u.DivisionID == divisionID {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock DivisionRepository ──

type mockDivisionRepo struct {
	divisions map[string]*model.Division
	members   map[string]int64
}

func newMockDivisionRepo() *mockDivisionRepo {
	return &mockDivisionRepo{
		divisions: make(map[string]*model.Division),
		members:   make(map[string]int64),
	}
}

func (m *mockDivisionRepo) Create(_ context.Context, division *model.Division) error {
	if division.DivisionID == "" {
		division.DivisionID = "div-" + division.Name
	}
	m.divisions[division.DivisionID] = division
	return nil
}

func (m *mockDivisionRepo) GetByID(_ context.Context, id string) (*model.Division, error) {
	if d, ok := m.divisions[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDivisionRepo) List(_ context.Context, kind string) ([]model.Division, error) {
	var result []model.Division
	for _, d := range m.divisions {
		if kind != "" && d.Kind != kind {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDivisionRepo) Update(_ context.Context, division *model.Division) error {
	m.divisions[division.DivisionID] = division
	return nil
}

func (m *mockDivisionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.divisions, id)
	return nil
}

func (m *mockDivisionRepo) CountMembers(_ context.Context, id string) (int64, error) {
	return m.members[id], nil
}

// ── Mock InviteCodeRepository ──

type mockInviteCodeRepo struct {
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = "inv-" + code.Code
	}
	m.codes[code.Code] = code
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	if c, ok := m.codes[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.InviteCode, error) {
	return m.GetByCode(ctx, code)
}

func (m *mockInviteCodeRepo) MarkUsed(_ context.Context, inviteCodeID, userID string) error {
	for _, c := range m.codes {
		if c.InviteCodeID == inviteCodeID {
			now := time.Now()
			c.UsedAt = &now
			c.UsedBy = &userID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ShowRepository ──

type mockShowRepo struct {
	shows map[string]*model.Show
}

func newMockShowRepo() *mockShowRepo {
	return &mockShowRepo{shows: make(map[string]*model.Show)}
}

func (m *mockShowRepo) Create(_ context.Context, show *model.Show) error {
	if show.ShowID == "" {
		show.ShowID = "show-" + show.Name
	}
	m.shows[show.ShowID] = show
	return nil
}

func (m *mockShowRepo) GetByID(_ context.Context, id string) (*model.Show, error) {
	if s, ok := m.shows[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShowRepo) List(_ context.Context, offset, limit int) ([]model.Show, int64, error) {
	var result []model.Show
	for _, s := range m.shows {
		result = append(result, *s)
	}
	return result, int64(len(result)), nil
}

func (m *mockShowRepo) Search(_ context.Context, keyword string, limit int) ([]model.Show, error) {
	var result []model.Show
	for _, s := range m.shows {
		if keyword != "" && !strings.Contains(s.Name, keyword) && !strings.Contains(s.HostName, keyword) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockShowRepo) Update(_ context.Context, show *model.Show) error {
	m.shows[show.ShowID] = show
	return nil
}

func (m *mockShowRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.shows, id)
	return nil
}

// ── Mock SlotRepository ──
//
// 模拟存储端的 (parent_slot_id, slot_date) 部分唯一索引：
// Create 活动 override 冲突时返回 pkgerrors.ErrDuplicateKey

type mockSlotRepo struct {
	slots map[string]*model.ScheduleSlot
	seq   int
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{slots: make(map[string]*model.ScheduleSlot)}
}

func (m *mockSlotRepo) Create(_ context.Context, slot *model.ScheduleSlot) error {
	if slot.ParentSlotID != nil && !slot.IsDeleted && slot.SlotDate != nil {
		for _, s := range m.slots {
			if s.ParentSlotID != nil && *s.ParentSlotID == *slot.ParentSlotID &&
				!s.IsDeleted && s.SlotDate != nil &&
				s.SlotDate.Format("2006-01-02") == slot.SlotDate.Format("2006-01-02") {
				return pkgerrors.ErrDuplicateKey
			}
		}
	}
	if slot.SlotID == "" {
		m.seq++
		slot.SlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, id string) (*model.ScheduleSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) ListMasters(_ context.Context) ([]model.ScheduleSlot, error) {
	var result []model.ScheduleSlot
	for _, s := range m.slots {
		if s.Kind == model.SlotKindMaster && !s.IsDeleted {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) ListInstancesInRange(_ context.Context, start, end time.Time) ([]model.ScheduleSlot, error) {
	var result []model.ScheduleSlot
	for _, s := range m.slots {
		if s.Kind != model.SlotKindInstance || s.SlotDate == nil {
			continue
		}
		d := s.SlotDate.Format("2006-01-02")
		if d >= start.Format("2006-01-02") && d <= end.Format("2006-01-02") {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		di, dj := result[i].SlotDate.Format("2006-01-02"), result[j].SlotDate.Format("2006-01-02")
		if di != dj {
			return di < dj
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockSlotRepo) GetActiveOverride(_ context.Context, parentID string, date time.Time) (*model.ScheduleSlot, error) {
	for _, s := range m.slots {
		if s.ParentSlotID != nil && *s.ParentSlotID == parentID &&
			!s.IsDeleted && s.SlotDate != nil &&
			s.SlotDate.Format("2006-01-02") == date.Format("2006-01-02") {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) Update(_ context.Context, slot *model.ScheduleSlot) error {
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockSlotRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.slots, id)
	return nil
}

// ── Mock SlotChangeLogRepository ──

type mockSlotChangeLogRepo struct {
	logs []model.SlotChangeLog
}

func newMockSlotChangeLogRepo() *mockSlotChangeLogRepo {
	return &mockSlotChangeLogRepo{}
}

func (m *mockSlotChangeLogRepo) Create(_ context.Context, log *model.SlotChangeLog) error {
	if log.ChangeLogID == "" {
		log.ChangeLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockSlotChangeLogRepo) ListBySlot(_ context.Context, slotID string, offset, limit int) ([]model.SlotChangeLog, int64, error) {
	var result []model.SlotChangeLog
	for i := range m.logs {
		if m.logs[i].SlotID == slotID {
			result = append(result, m.logs[i])
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockSlotChangeLogRepo) ListRecent(_ context.Context, offset, limit int) ([]model.SlotChangeLog, int64, error) {
	return m.logs, int64(len(m.logs)), nil
}

// ── Mock LineupRepository ──

type mockLineupRepo struct {
	lineups map[string]*model.Lineup
	items   map[string]*model.LineupItem
	seq     int
}

func newMockLineupRepo() *mockLineupRepo {
	return &mockLineupRepo{
		lineups: make(map[string]*model.Lineup),
		items:   make(map[string]*model.LineupItem),
	}
}

func (m *mockLineupRepo) Create(_ context.Context, lineup *model.Lineup) error {
	for _, l := range m.lineups {
		if l.SlotID == lineup.SlotID &&
			l.LineupDate.Format("2006-01-02") == lineup.LineupDate.Format("2006-01-02") {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if lineup.LineupID == "" {
		m.seq++
		lineup.LineupID = fmt.Sprintf("lineup-%d", m.seq)
	}
	m.lineups[lineup.LineupID] = lineup
	return nil
}

func (m *mockLineupRepo) GetByID(_ context.Context, id string) (*model.Lineup, error) {
	l, ok := m.lineups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *l
	copied.Items = nil
	for _, item := range m.items {
		if item.LineupID == id {
			copied.Items = append(copied.Items, *item)
		}
	}
	sort.Slice(copied.Items, func(i, j int) bool {
		return copied.Items[i].Position < copied.Items[j].Position
	})
	return &copied, nil
}

func (m *mockLineupRepo) GetBySlotAndDate(ctx context.Context, slotID string, date time.Time) (*model.Lineup, error) {
	for id, l := range m.lineups {
		if l.SlotID == slotID && l.LineupDate.Format("2006-01-02") == date.Format("2006-01-02") {
			return m.GetByID(ctx, id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLineupRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]model.Lineup, error) {
	var result []model.Lineup
	for _, l := range m.lineups {
		d := l.LineupDate.Format("2006-01-02")
		if d >= start.Format("2006-01-02") && d <= end.Format("2006-01-02") {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLineupRepo) Update(_ context.Context, lineup *model.Lineup) error {
	stored, ok := m.lineups[lineup.LineupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *lineup
	updated.Items = nil
	*stored = updated
	return nil
}

func (m *mockLineupRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.lineups, id)
	return nil
}

func (m *mockLineupRepo) CreateItem(_ context.Context, item *model.LineupItem) error {
	if item.LineupItemID == "" {
		m.seq++
		item.LineupItemID = fmt.Sprintf("item-%d", m.seq)
	}
	m.items[item.LineupItemID] = item
	return nil
}

func (m *mockLineupRepo) UpdateItem(_ context.Context, item *model.LineupItem) error {
	m.items[item.LineupItemID] = item
	return nil
}

func (m *mockLineupRepo) DeleteItem(_ context.Context, itemID string) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockLineupRepo) GetItemByID(_ context.Context, itemID string) (*model.LineupItem, error) {
	if item, ok := m.items[itemID]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLineupRepo) ReorderItems(_ context.Context, lineupID string, orderedItemIDs []string) error {
	for pos, id := range orderedItemIDs {
		if item, ok := m.items[id]; ok && item.LineupID == lineupID {
			item.Position = pos + 1
		}
	}
	return nil
}

// ── Mock NotificationSettingRepository ──

type mockNotificationSettingRepo struct {
	setting *model.NotificationSetting
}

func newMockNotificationSettingRepo() *mockNotificationSettingRepo {
	return &mockNotificationSettingRepo{
		setting: &model.NotificationSetting{Singleton: true},
	}
}

func (m *mockNotificationSettingRepo) Get(_ context.Context) (*model.NotificationSetting, error) {
	return m.setting, nil
}

func (m *mockNotificationSettingRepo) Update(_ context.Context, setting *model.NotificationSetting) error {
	m.setting = setting
	return nil
}

// ── Mock StationConfigRepository ──

type mockStationConfigRepo struct {
	config *model.StationConfig
}

func newMockStationConfigRepo() *mockStationConfigRepo {
	return &mockStationConfigRepo{
		config: &model.StationConfig{
			Singleton:   true,
			StationName: "OnAir",
			Timezone:    "UTC",
			WeekStart:   0,
		},
	}
}

func (m *mockStationConfigRepo) Get(_ context.Context) (*model.StationConfig, error) {
	return m.config, nil
}

func (m *mockStationConfigRepo) Update(_ context.Context, cfg *model.StationConfig) error {
	m.config = cfg
	return nil
}

// ── Mock 事件发布 ──

type mockEventPublisher struct {
	published []string // routing keys
}

func (m *mockEventPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	m.published = append(m.published, routingKey)
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
