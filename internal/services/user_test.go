package services

import (
	"testing"

	"tieba/internal/db"
	"tieba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	setupTestDB(t)

	user, err := RegisterUser("alice", "password123", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", user.Password) // 存的是 bcrypt 哈希
	assert.Equal(t, models.UserStatusActive, user.Status)

	// 注册同时建好资料和私信设置
	var profile models.UserProfile
	require.NoError(t, db.DB.Where("user_id = ?", user.ID).First(&profile).Error)
	var setting models.UserMessageSetting
	require.NoError(t, db.DB.Where("user_id = ?", user.ID).First(&setting).Error)
	assert.True(t, setting.ReceivePrivateMessages)
}

func TestRegisterUserDuplicateUsername(t *testing.T) {
	setupTestDB(t)

	_, err := RegisterUser("alice", "password123", nil)
	require.NoError(t, err)

	_, err = RegisterUser("alice", "otherpassword", nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthenticateUser(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "alice")

	user, err := AuthenticateUser("alice", "password123", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = AuthenticateUser("alice", "wrongpassword", "127.0.0.1")
	assert.Error(t, err)

	_, err = AuthenticateUser("nobody", "password123", "127.0.0.1")
	assert.Error(t, err)
}

func TestFollowUser(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	require.NoError(t, FollowUser(alice.ID, bob.ID))
	assert.True(t, IsFollowing(alice.ID, bob.ID))
	assert.False(t, IsFollowing(bob.ID, alice.ID))

	// 双方计数各自加一
	aliceNow, _ := GetUser(alice.ID)
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 1, aliceNow.FollowingCount)
	assert.Equal(t, 0, aliceNow.FollowerCount)
	assert.Equal(t, 1, bobNow.FollowerCount)
	assert.Equal(t, 0, bobNow.FollowingCount)
}

func TestFollowUserSelf(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")

	assert.ErrorIs(t, FollowUser(alice.ID, alice.ID), ErrInvalidState)
}

func TestFollowUserDuplicate(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	require.NoError(t, FollowUser(alice.ID, bob.ID))
	assert.ErrorIs(t, FollowUser(alice.ID, bob.ID), ErrConflict)

	// 重复关注不会把计数加到 2
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 1, bobNow.FollowerCount)
}

func TestUnfollowUser(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	require.NoError(t, FollowUser(alice.ID, bob.ID))
	require.NoError(t, UnfollowUser(alice.ID, bob.ID))
	assert.False(t, IsFollowing(alice.ID, bob.ID))

	aliceNow, _ := GetUser(alice.ID)
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 0, aliceNow.FollowingCount)
	assert.Equal(t, 0, bobNow.FollowerCount)

	// 没有关注关系时取消关注
	assert.ErrorIs(t, UnfollowUser(alice.ID, bob.ID), ErrNotFound)
}

func TestFollowNotification(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	require.NoError(t, FollowUser(alice.ID, bob.ID))

	notifications, err := ListNotifications(bob.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeFollow, notifications[0].Type)
}

func TestListFollowersAndFollowing(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	carol := createTestUser(t, "carol")

	require.NoError(t, FollowUser(bob.ID, alice.ID))
	require.NoError(t, FollowUser(carol.ID, alice.ID))
	require.NoError(t, FollowUser(alice.ID, bob.ID))

	followers, err := ListFollowers(alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := ListFollowing(alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)
}

func TestDeactivateUser(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "告别帖")

	require.NoError(t, DeactivateUser(alice.ID))

	aliceNow, err := GetUser(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusClosed, aliceNow.Status)

	// 历史内容保留
	kept, err := GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, kept.AuthorID)

	// 注销后不能再发布
	_, err = CreatePost(CreatePostInput{BoardID: board.ID, AuthorID: alice.ID, Title: "再发一帖", Content: "正文"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

// 计数口径:post_count 与「非删除状态的帖子数」保持一致
func TestUserPostCountConsistency(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")

	p1 := createTestPost(t, board.ID, alice.ID, "第一帖")
	createTestPost(t, board.ID, alice.ID, "第二帖")
	_, err := CreatePost(CreatePostInput{BoardID: board.ID, AuthorID: alice.ID, Title: "草稿", Content: "未发布", Draft: true})
	require.NoError(t, err)

	require.NoError(t, SoftDeletePost(p1.ID))

	var live int64
	require.NoError(t, db.DB.Model(&models.Post{}).
		Where("author_id = ? AND status != ?", alice.ID, models.PostStatusDeleted).
		Count(&live).Error)

	aliceNow, _ := GetUser(alice.ID)
	assert.Equal(t, int(live), aliceNow.PostCount)
	assert.Equal(t, 2, aliceNow.PostCount)
}

func TestUpdateUserProfile(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")

	require.NoError(t, UpdateUserProfile(alice.ID, map[string]interface{}{
		"location": "上海",
		"school":   "复旦大学",
	}))

	profile, err := GetUserProfile(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "上海", profile.Location)
	assert.Equal(t, "复旦大学", profile.School)
}
