package services

import (
	"errors"

	"gorm.io/gorm"
)

// 服务层错误分类,handlers 层据此映射 HTTP 状态码
var (
	ErrNotFound         = errors.New("record not found")  // 引用的实体不存在
	ErrConflict         = errors.New("already exists")    // 唯一约束冲突(重复关注/点赞/会话等)
	ErrInvalidState     = errors.New("invalid state")     // 当前状态下不允许该操作
	ErrPermissionDenied = errors.New("permission denied") // 黑名单/私信设置等拒绝
)

// isDuplicate 判断是否唯一索引冲突(依赖 gorm.Config.TranslateError)
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// isRecordNotFound 判断是否查无此行
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
