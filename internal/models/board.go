package models

import (
	"time"
)

// BoardCategory 吧分类,启动时预置(见 db.seedCategories)
type BoardCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique;size:50" json:"name"`
	Description string    `gorm:"size:200" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// 吧状态
const (
	BoardStatusActive      int16 = 1 // 正常
	BoardStatusUnderReview int16 = 2 // 审核中
	BoardStatusBanned      int16 = 3 // 封禁
	BoardStatusHidden      int16 = 4 // 隐藏
)

// 加入/发帖权限
const (
	PermissionOpen      int16 = 1 // 自由
	PermissionModerated int16 = 2 // 需要审核
	PermissionClosed    int16 = 3 // 禁止
)

// Board 贴吧主表,名称全局唯一,归属唯一的吧主
type Board struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	Avatar      string         `gorm:"size:255" json:"avatar"`
	Banner      string         `gorm:"size:255" json:"banner"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Owner       User           `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CategoryID  *uint          `gorm:"index" json:"category_id"` // 可空,删除分类时置空
	Category    *BoardCategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`

	// 统计字段 - 与成员表/帖子表保持一致
	MemberCount    int `gorm:"default:0" json:"member_count"`
	PostCount      int `gorm:"default:0" json:"post_count"`
	TodayPostCount int `gorm:"default:0" json:"today_post_count"`

	Status         int16 `gorm:"default:1;index" json:"status"`
	JoinPermission int16 `gorm:"default:1" json:"join_permission"`
	PostPermission int16 `gorm:"default:1" json:"post_permission"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// 成员角色
const (
	RoleMember          int16 = 1 // 普通成员
	RoleJuniorModerator int16 = 2 // 小吧主
	RoleSeniorModerator int16 = 3 // 大吧主
	RoleFounder         int16 = 4 // 创始人
)

// BoardMember 吧成员关系,(board, user) 唯一
type BoardMember struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	BoardID   uint       `gorm:"not null;index:idx_board_role;uniqueIndex:idx_board_user" json:"board_id"`
	Board     Board      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint       `gorm:"not null;index;uniqueIndex:idx_board_user" json:"user_id"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Role      int16      `gorm:"default:1;index:idx_board_role" json:"role"`
	// 审核制吧的待审成员为 false;不能加 default 标签,否则 GORM 插入时会省略零值 false
	IsActive  bool       `json:"is_active"`
	JoinedAt  time.Time  `json:"joined_at"`
	LastVisit *time.Time `json:"last_visit"`
}

// BoardAdmin 吧务任命,(board, user) 唯一
// 到期的任命在鉴权时视为无效,不需要删除行
type BoardAdmin struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	BoardID uint  `gorm:"not null;uniqueIndex:idx_admin_board_user" json:"board_id"`
	Board   Board `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID  uint  `gorm:"not null;index;uniqueIndex:idx_admin_board_user" json:"user_id"`
	User    User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// 独立的能力开关,任命时显式写入,不依赖列默认值
	CanManagePosts    bool `json:"can_manage_posts"`
	CanManageComments bool `json:"can_manage_comments"`
	CanManageMembers  bool `json:"can_manage_members"`
	CanManageSettings bool `json:"can_manage_settings"`

	AppointedAt time.Time  `json:"appointed_at"`
	ExpiresAt   *time.Time `json:"expires_at"` // 可空,空代表长期
}

// 公告类型
const (
	AnnouncementNormal    int16 = 1 // 普通公告
	AnnouncementImportant int16 = 2 // 重要公告
	AnnouncementSystem    int16 = 3 // 系统公告
)

// BoardAnnouncement 吧公告,置顶优先、创建时间倒序
type BoardAnnouncement struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BoardID  uint   `gorm:"not null;index:idx_ann_board_active" json:"board_id"`
	Board    Board  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID uint   `gorm:"not null" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Type     int16  `gorm:"default:1" json:"type"`

	IsPinned bool `gorm:"default:false" json:"is_pinned"`
	IsActive bool `gorm:"default:true;index:idx_ann_board_active" json:"is_active"`

	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}
