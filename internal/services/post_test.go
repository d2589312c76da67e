package services

import (
	"testing"

	"tieba/internal/db"
	"tieba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")

	post := createTestPost(t, board.ID, alice.ID, "第一帖")
	assert.Equal(t, models.PostStatusActive, post.Status)

	aliceNow, _ := GetUser(alice.ID)
	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 1, aliceNow.PostCount)
	assert.Equal(t, 1, boardNow.PostCount)
	assert.Equal(t, 1, boardNow.TodayPostCount)
}

func TestCreatePostNotMember(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")

	_, err := CreatePost(CreatePostInput{BoardID: board.ID, AuthorID: bob.ID, Title: "路过", Content: "正文"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreatePostModeratedBoard(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "审核制吧")
	require.NoError(t, db.DB.Model(board).Update("post_permission", models.PermissionModerated).Error)

	post, err := CreatePost(CreatePostInput{BoardID: board.ID, AuthorID: alice.ID, Title: "待审帖", Content: "正文"})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusUnderReview, post.Status)
}

func TestPublishDraft(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")

	draft, err := CreatePost(CreatePostInput{BoardID: board.ID, AuthorID: alice.ID, Title: "草稿", Content: "正文", Draft: true})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, draft.Status)

	require.NoError(t, PublishDraft(draft.ID, alice.ID))
	published, _ := GetPost(draft.ID)
	assert.Equal(t, models.PostStatusActive, published.Status)

	// 已发布的帖子不能再发布;别人的草稿也不能发布
	assert.ErrorIs(t, PublishDraft(draft.ID, alice.ID), ErrNotFound)
}

func TestLikePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "求赞")

	require.NoError(t, LikePost(post.ID, bob.ID))
	// 重复点赞只计一次
	assert.ErrorIs(t, LikePost(post.ID, bob.ID), ErrConflict)

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 1, postNow.LikeCount)

	// 他人点赞会通知作者
	notifications, err := ListNotifications(alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypePostLike, notifications[0].Type)
}

func TestLikeOwnPostNoNotification(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "自赞")

	require.NoError(t, LikePost(post.ID, alice.ID))

	notifications, err := ListNotifications(alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestUnlikePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "求赞")

	require.NoError(t, LikePost(post.ID, bob.ID))
	require.NoError(t, UnlikePost(post.ID, bob.ID))

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 0, postNow.LikeCount)

	assert.ErrorIs(t, UnlikePost(post.ID, bob.ID), ErrNotFound)
}

func TestCollectPost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "好帖")

	require.NoError(t, CollectPost(post.ID, bob.ID))
	assert.ErrorIs(t, CollectPost(post.ID, bob.ID), ErrConflict)

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 1, postNow.CollectCount)

	require.NoError(t, UncollectPost(post.ID, bob.ID))
	postNow, _ = GetPost(post.ID)
	assert.Equal(t, 0, postNow.CollectCount)
}

func TestRecordPostView(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "围观帖")

	require.NoError(t, RecordPostView(post.ID, alice.ID, "127.0.0.1", "test-agent"))
	require.NoError(t, RecordPostView(post.ID, alice.ID, "127.0.0.1", "test-agent"))

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 2, postNow.ViewCount)

	var histories int64
	db.DB.Model(&models.PostViewHistory{}).Where("post_id = ?", post.ID).Count(&histories)
	assert.Equal(t, int64(2), histories)
}

func TestSharePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "转发帖")

	require.NoError(t, SharePost(post.ID))
	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 1, postNow.ShareCount)

	// 关闭分享后拒绝
	require.NoError(t, db.DB.Model(post).Update("can_share", false).Error)
	assert.ErrorIs(t, SharePost(post.ID), ErrInvalidState)

	assert.ErrorIs(t, SharePost(99999), ErrNotFound)
}

func TestSoftDeletePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "要删的帖")
	require.NoError(t, LikePost(post.ID, bob.ID))

	require.NoError(t, SoftDeletePost(post.ID))

	// 对外表现为不存在
	_, err := GetPost(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	// 行和子表都还在
	var raw models.Post
	require.NoError(t, db.DB.First(&raw, post.ID).Error)
	assert.Equal(t, models.PostStatusDeleted, raw.Status)
	var likes int64
	db.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	assert.Equal(t, int64(1), likes)

	// 计数只扣一次
	aliceNow, _ := GetUser(alice.ID)
	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 0, aliceNow.PostCount)
	assert.Equal(t, 0, boardNow.PostCount)
	assert.Equal(t, 0, boardNow.TodayPostCount)

	assert.ErrorIs(t, SoftDeletePost(post.ID), ErrInvalidState)
}

func TestHardDeletePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))
	post := createTestPost(t, board.ID, alice.ID, "彻底删除")

	_, err := CreateComment(post.ID, bob.ID, "沙发", nil)
	require.NoError(t, err)
	require.NoError(t, LikePost(post.ID, bob.ID))

	require.NoError(t, HardDeletePost(post.ID))

	var posts, comments, likes int64
	db.DB.Model(&models.Post{}).Where("id = ?", post.ID).Count(&posts)
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, likes)

	// 作者与评论者的计数全部回滚
	aliceNow, _ := GetUser(alice.ID)
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 0, aliceNow.PostCount)
	assert.Equal(t, 0, bobNow.CommentCount)
}

// 软删除过的帖子物理删除时不再扣计数
func TestHardDeleteAfterSoftDelete(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "删两次")

	require.NoError(t, SoftDeletePost(post.ID))
	require.NoError(t, HardDeletePost(post.ID))

	aliceNow, _ := GetUser(alice.ID)
	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 0, aliceNow.PostCount)
	assert.Equal(t, 0, boardNow.PostCount)
}

func TestListPosts(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))

	first := createTestPost(t, board.ID, alice.ID, "旧帖")
	second := createTestPost(t, board.ID, alice.ID, "新帖")
	deleted := createTestPost(t, board.ID, alice.ID, "已删帖")
	require.NoError(t, SoftDeletePost(deleted.ID))

	// 被回复的旧帖排到最前
	_, err := CreateComment(first.ID, bob.ID, "顶旧帖", nil)
	require.NoError(t, err)

	posts, err := ListPosts(ListPostsOptions{BoardID: &board.ID, Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, posts, 2) // 默认不出已删帖
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)
}

func TestUpdatePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "原标题")

	require.NoError(t, UpdatePost(post.ID, alice.ID, "新标题", "新正文"))
	postNow, _ := GetPost(post.ID)
	assert.Equal(t, "新标题", postNow.Title)

	// 非作者不能编辑
	assert.ErrorIs(t, UpdatePost(post.ID, bob.ID, "越权", "越权"), ErrNotFound)
}
