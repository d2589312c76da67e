package db

import (
	"log"
	"os"
	"tieba/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=tieba port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	// TranslateError 让唯一索引冲突统一映射成 gorm.ErrDuplicatedKey
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed initial categories
	seedCategories()
}

// Migrate 建表,测试用的 sqlite 库也走同一份结构
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		// 用户相关
		&models.User{},
		&models.UserProfile{},
		&models.FollowRelation{},
		&models.UserNotification{},
		// 贴吧相关
		&models.BoardCategory{},
		&models.Board{},
		&models.BoardMember{},
		&models.BoardAdmin{},
		&models.BoardAnnouncement{},
		// 帖子相关
		&models.Post{},
		&models.PostLike{},
		&models.PostCollect{},
		&models.PostViewHistory{},
		&models.PostReport{},
		// 评论相关
		&models.Comment{},
		&models.CommentLike{},
		&models.CommentReport{},
		&models.CommentMention{},
		// 私信相关
		&models.Conversation{},
		&models.PrivateMessage{},
		&models.UserMessageSetting{},
		&models.MessageBlacklist{},
	)
}

func seedCategories() {
	// 检查是否已有分类数据
	var count int64
	DB.Model(&models.BoardCategory{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	// 创建预设分类
	categories := []models.BoardCategory{
		{Name: "游戏", Description: "游戏讨论与攻略", SortOrder: 1},
		{Name: "动漫", Description: "动画、漫画、轻小说", SortOrder: 2},
		{Name: "科技", Description: "数码、编程、科技资讯", SortOrder: 3},
		{Name: "生活", Description: "生活日常、经验分享", SortOrder: 4},
		{Name: "娱乐", Description: "影视、音乐、明星", SortOrder: 5},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}
