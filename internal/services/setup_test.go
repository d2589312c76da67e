package services

import (
	"fmt"
	"testing"

	"tieba/internal/db"
	"tieba/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个测试用独立的内存 sqlite 库
// MaxOpenConns(1) 保证唯一连接不被关闭(内存库随连接销毁),
// 同时让并发用例在单连接上串行化
func setupTestDB(t *testing.T) {
	t.Helper()

	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(d))

	db.DB = d
	t.Cleanup(func() {
		sqlDB.Close()
	})
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := RegisterUser(username, "password123", nil)
	require.NoError(t, err)
	return user
}

func createTestBoard(t *testing.T, ownerID uint, name string) *models.Board {
	t.Helper()
	board, err := CreateBoard(ownerID, name, "测试贴吧", nil)
	require.NoError(t, err)
	return board
}

func createTestPost(t *testing.T, boardID, authorID uint, title string) *models.Post {
	t.Helper()
	post, err := CreatePost(CreatePostInput{
		BoardID:  boardID,
		AuthorID: authorID,
		Title:    title,
		Content:  fmt.Sprintf("%s 的正文", title),
	})
	require.NoError(t, err)
	return post
}
