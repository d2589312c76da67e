package services

import (
	"fmt"
	"sync"
	"testing"

	"tieba/internal/db"
	"tieba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼帖")

	comment, err := CreateComment(post.ID, bob.ID, "沙发", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, comment.FloorNumber)

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 1, postNow.CommentCount)
	require.NotNil(t, postNow.LastReplyAt)

	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 1, bobNow.CommentCount)

	// 帖子作者收到评论通知
	notifications, err := ListNotifications(alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypePostComment, notifications[0].Type)
}

func TestCreateCommentReply(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼帖")

	parent, err := CreateComment(post.ID, bob.ID, "一楼", nil)
	require.NoError(t, err)
	reply, err := CreateComment(post.ID, alice.ID, "回一楼", &parent.ID)
	require.NoError(t, err)

	// 楼中楼也占楼层号
	assert.Equal(t, 2, reply.FloorNumber)

	parentNow, _ := GetComment(parent.ID)
	assert.Equal(t, 1, parentNow.ReplyCount)

	// 被回复者收到回复通知
	notifications, err := ListNotifications(bob.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeCommentReply, notifications[0].Type)

	replies, err := ListReplies(parent.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)
}

func TestCreateCommentParentChecks(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	p1 := createTestPost(t, board.ID, alice.ID, "帖一")
	p2 := createTestPost(t, board.ID, alice.ID, "帖二")

	parent, err := CreateComment(p1.ID, alice.ID, "一楼", nil)
	require.NoError(t, err)

	// 父评论必须属于同一帖
	_, err = CreateComment(p2.ID, alice.ID, "串帖回复", &parent.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// 已删除的父评论不能再回复
	require.NoError(t, SoftDeleteComment(parent.ID))
	_, err = CreateComment(p1.ID, alice.ID, "回删评", &parent.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateCommentDisabled(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "锁评帖")
	require.NoError(t, db.DB.Model(post).Update("can_comment", false).Error)

	_, err := CreateComment(post.ID, alice.ID, "评不了", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

// 并发盖楼:楼层号必须互不相同且连续
func TestConcurrentCommentFloors(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼大赛")

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := CreateComment(post.ID, alice.ID, fmt.Sprintf("第 %d 条", i), nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var comments []models.Comment
	require.NoError(t, db.DB.Where("post_id = ?", post.ID).
		Order("floor_number ASC").Find(&comments).Error)
	require.Len(t, comments, n)
	for i, c := range comments {
		assert.Equal(t, i+1, c.FloorNumber)
	}

	postNow, _ := GetPost(post.ID)
	assert.Equal(t, n, postNow.CommentCount)
}

func TestSoftDeleteComment(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼帖")

	parent, err := CreateComment(post.ID, bob.ID, "一楼", nil)
	require.NoError(t, err)
	reply, err := CreateComment(post.ID, alice.ID, "回一楼", &parent.ID)
	require.NoError(t, err)

	require.NoError(t, SoftDeleteComment(parent.ID))

	// 占楼:楼层号保留,子回复还挂在下面
	parentNow, _ := GetComment(parent.ID)
	assert.Equal(t, models.CommentStatusDeleted, parentNow.Status)
	assert.Equal(t, 1, parentNow.FloorNumber)
	replyNow, _ := GetComment(reply.ID)
	assert.Equal(t, models.CommentStatusActive, replyNow.Status)
	require.NotNil(t, replyNow.ParentID)
	assert.Equal(t, parent.ID, *replyNow.ParentID)

	// 计数回退
	postNow, _ := GetPost(post.ID)
	assert.Equal(t, 1, postNow.CommentCount)
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 0, bobNow.CommentCount)

	// 楼层列表里仍然占位
	comments, err := ListCommentsByPost(post.ID, 1, 20)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	assert.ErrorIs(t, SoftDeleteComment(parent.ID), ErrInvalidState)
}

func TestCommentLike(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼帖")
	comment, err := CreateComment(post.ID, alice.ID, "一楼", nil)
	require.NoError(t, err)

	require.NoError(t, LikeComment(comment.ID, bob.ID))
	assert.ErrorIs(t, LikeComment(comment.ID, bob.ID), ErrConflict)

	commentNow, _ := GetComment(comment.ID)
	assert.Equal(t, 1, commentNow.LikeCount)

	require.NoError(t, UnlikeComment(comment.ID, bob.ID))
	assert.ErrorIs(t, UnlikeComment(comment.ID, bob.ID), ErrNotFound)
}

func TestCommentMentions(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "盖楼帖")

	comment, err := CreateComment(post.ID, alice.ID, "@bob @bob @ghost 来看", nil)
	require.NoError(t, err)

	// 同一个人只记一次,不存在的用户忽略
	var mentions []models.CommentMention
	require.NoError(t, db.DB.Where("comment_id = ?", comment.ID).Find(&mentions).Error)
	require.Len(t, mentions, 1)
	assert.Equal(t, bob.ID, mentions[0].MentionedUserID)

	notifications, err := ListNotifications(bob.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeMention, notifications[0].Type)
}

func TestCommentOnInactivePost(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")
	post := createTestPost(t, board.ID, alice.ID, "要删的帖")
	require.NoError(t, SoftDeletePost(post.ID))

	_, err := CreateComment(post.ID, alice.ID, "评不了", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}
