package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"onair/backend/internal/dto"
	"onair/backend/internal/service"
	"onair/backend/pkg/response"
)

// LineupHandler 串联单模块 HTTP 处理器
type LineupHandler struct {
	lineupSvc service.LineupService
}

// NewLineupHandler 创建 LineupHandler
func NewLineupHandler(lineupSvc service.LineupService) *LineupHandler {
	return &LineupHandler{lineupSvc: lineupSvc}
}

// CreateLineup 创建串联单（档期为虚拟投影时先物化）
// POST /api/v1/lineups
func (h *LineupHandler) CreateLineup(c *gin.Context) {
	var req dto.CreateLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	lineup, err := h.lineupSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.Created(c, lineup)
}

// GetLineup 获取串联单详情
// GET /api/v1/lineups/:id
func (h *LineupHandler) GetLineup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "串联单ID不能为空")
		return
	}

	lineup, err := h.lineupSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, lineup)
}

// GetLineupBySlot 按档期与日期查串联单
// GET /api/v1/lineups/by-slot?slot_id=xxx&date=2026-03-02
func (h *LineupHandler) GetLineupBySlot(c *gin.Context) {
	slotID := c.Query("slot_id")
	date := c.Query("date")
	if slotID == "" || date == "" {
		response.BadRequest(c, 10001, "slot_id 与 date 不能为空")
		return
	}

	lineup, err := h.lineupSvc.GetBySlotAndDate(c.Request.Context(), slotID, date)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, lineup)
}

// UpdateLineup 更新串联单备注
// PUT /api/v1/lineups/:id
func (h *LineupHandler) UpdateLineup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "串联单ID不能为空")
		return
	}

	var req dto.UpdateLineupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	lineup, err := h.lineupSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, lineup)
}

// DeleteLineup 删除串联单
// DELETE /api/v1/lineups/:id
func (h *LineupHandler) DeleteLineup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "串联单ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.lineupSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddItem 追加串联单条目
// POST /api/v1/lineups/:id/items
func (h *LineupHandler) AddItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "串联单ID不能为空")
		return
	}

	var req dto.CreateLineupItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	lineup, err := h.lineupSvc.AddItem(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.Created(c, lineup)
}

// UpdateItem 更新串联单条目
// PUT /api/v1/lineups/:id/items/:itemId
func (h *LineupHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("itemId")
	if id == "" || itemID == "" {
		response.BadRequest(c, 10001, "串联单与条目ID不能为空")
		return
	}

	var req dto.UpdateLineupItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	lineup, err := h.lineupSvc.UpdateItem(c.Request.Context(), id, itemID, &req, callerID)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, lineup)
}

// DeleteItem 删除串联单条目
// DELETE /api/v1/lineups/:id/items/:itemId
func (h *LineupHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	itemID := c.Param("itemId")
	if id == "" || itemID == "" {
		response.BadRequest(c, 10001, "串联单与条目ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.lineupSvc.DeleteItem(c.Request.Context(), id, itemID, callerID); err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, nil)
}

// ReorderItems 条目整单重排
// PUT /api/v1/lineups/:id/items/reorder
func (h *LineupHandler) ReorderItems(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "串联单ID不能为空")
		return
	}

	var req dto.ReorderLineupItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	lineup, err := h.lineupSvc.ReorderItems(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleLineupError(c, err)
		return
	}

	response.OK(c, lineup)
}

func (h *LineupHandler) handleLineupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLineupNotFound):
		response.NotFound(c, 15001, "串联单不存在")
	case errors.Is(err, service.ErrLineupItemNotFound):
		response.NotFound(c, 15002, "串联单条目不存在")
	case errors.Is(err, service.ErrLineupAlreadyExists):
		response.Conflict(c, 15003, "该档期当日已有串联单")
	case errors.Is(err, service.ErrLineupSlotMismatch):
		response.BadRequest(c, 15004, "条目不属于该串联单")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 14001, "排班槽位不存在")
	case errors.Is(err, service.ErrMasterNotFound):
		response.NotFound(c, 14002, "母版槽位不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/lineup_handler.go
