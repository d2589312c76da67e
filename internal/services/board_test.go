package services

import (
	"testing"
	"time"

	"tieba/internal/db"
	"tieba/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoard(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")

	board := createTestBoard(t, alice.ID, "英雄联盟吧")
	assert.Equal(t, alice.ID, board.OwnerID)
	assert.Equal(t, 1, board.MemberCount)

	// 创建者自动成为创始人成员
	member, err := GetMembership(board.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleFounder, member.Role)
	assert.True(t, member.IsActive)
}

func TestCreateBoardDuplicateName(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")

	createTestBoard(t, alice.ID, "英雄联盟吧")
	_, err := CreateBoard(bob.ID, "英雄联盟吧", "撞名", nil)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetBoardByName(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "原神吧")

	// 第二次命中缓存
	for i := 0; i < 2; i++ {
		found, err := GetBoardByName("原神吧")
		require.NoError(t, err)
		assert.Equal(t, board.ID, found.ID)
	}

	_, err := GetBoardByName("不存在的吧")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinBoard(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")

	require.NoError(t, JoinBoard(board.ID, bob.ID))

	member, err := GetMembership(board.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, member.IsActive)
	assert.Equal(t, models.RoleMember, member.Role)

	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 2, boardNow.MemberCount)

	// 重复加入
	assert.ErrorIs(t, JoinBoard(board.ID, bob.ID), ErrConflict)
}

func TestJoinBoardModerated(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "审核制吧")
	require.NoError(t, db.DB.Model(board).Update("join_permission", models.PermissionModerated).Error)

	require.NoError(t, JoinBoard(board.ID, bob.ID))

	// 待审成员不计数
	member, err := GetMembership(board.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, member.IsActive)
	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 1, boardNow.MemberCount)

	// 审批通过后才计数
	require.NoError(t, ApproveMember(board.ID, bob.ID))
	member, _ = GetMembership(board.ID, bob.ID)
	assert.True(t, member.IsActive)
	boardNow, _ = GetBoard(board.ID)
	assert.Equal(t, 2, boardNow.MemberCount)

	// 已激活的成员不能重复审批
	assert.ErrorIs(t, ApproveMember(board.ID, bob.ID), ErrNotFound)
}

func TestJoinBoardClosed(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "封闭吧")
	require.NoError(t, db.DB.Model(board).Update("join_permission", models.PermissionClosed).Error)

	assert.ErrorIs(t, JoinBoard(board.ID, bob.ID), ErrInvalidState)
}

func TestLeaveBoard(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")

	require.NoError(t, JoinBoard(board.ID, bob.ID))
	require.NoError(t, LeaveBoard(board.ID, bob.ID))

	_, err := GetMembership(board.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	boardNow, _ := GetBoard(board.ID)
	assert.Equal(t, 1, boardNow.MemberCount)

	// 创始人不允许退出
	assert.ErrorIs(t, LeaveBoard(board.ID, alice.ID), ErrInvalidState)
}

func TestBoardAdminCapabilities(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))

	// 吧主天然拥有全部能力
	assert.True(t, HasBoardCapability(board.ID, alice.ID, CapManageSettings))
	// 普通成员没有
	assert.False(t, HasBoardCapability(board.ID, bob.ID, CapManagePosts))

	require.NoError(t, AppointBoardAdmin(board.ID, bob.ID, models.BoardAdmin{
		CanManagePosts:    true,
		CanManageComments: true,
	}))
	assert.True(t, HasBoardCapability(board.ID, bob.ID, CapManagePosts))
	assert.False(t, HasBoardCapability(board.ID, bob.ID, CapManageSettings))

	// 任命时没给的能力落库后仍为 false
	var admin models.BoardAdmin
	require.NoError(t, db.DB.Where("board_id = ? AND user_id = ?", board.ID, bob.ID).First(&admin).Error)
	assert.False(t, admin.CanManageMembers)
	assert.False(t, HasBoardCapability(board.ID, bob.ID, CapManageMembers))

	// 重复任命
	err := AppointBoardAdmin(board.ID, bob.ID, models.BoardAdmin{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBoardAdminExpiry(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, AppointBoardAdmin(board.ID, bob.ID, models.BoardAdmin{
		CanManagePosts: true,
		ExpiresAt:      &expired,
	}))

	// 到期任命鉴权失效,但行还在
	assert.False(t, HasBoardCapability(board.ID, bob.ID, CapManagePosts))
	var count int64
	db.DB.Model(&models.BoardAdmin{}).Where("board_id = ? AND user_id = ?", board.ID, bob.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRevokeBoardAdmin(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "测试吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))
	require.NoError(t, AppointBoardAdmin(board.ID, bob.ID, models.BoardAdmin{CanManagePosts: true}))

	require.NoError(t, RevokeBoardAdmin(board.ID, bob.ID))
	assert.False(t, HasBoardCapability(board.ID, bob.ID, CapManagePosts))
	assert.ErrorIs(t, RevokeBoardAdmin(board.ID, bob.ID), ErrNotFound)
}

func TestAnnouncements(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	board := createTestBoard(t, alice.ID, "测试吧")

	_, err := CreateAnnouncement(board.ID, alice.ID, "普通公告", "内容", models.AnnouncementNormal, false, nil)
	require.NoError(t, err)
	_, err = CreateAnnouncement(board.ID, alice.ID, "置顶公告", "内容", models.AnnouncementImportant, true, nil)
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	_, err = CreateAnnouncement(board.ID, alice.ID, "过期公告", "内容", models.AnnouncementNormal, false, &expired)
	require.NoError(t, err)

	anns, err := ListAnnouncements(board.ID)
	require.NoError(t, err)
	require.Len(t, anns, 2)
	assert.Equal(t, "置顶公告", anns[0].Title) // 置顶优先
}

func TestDeleteBoardCascade(t *testing.T) {
	setupTestDB(t)
	alice := createTestUser(t, "alice")
	bob := createTestUser(t, "bob")
	board := createTestBoard(t, alice.ID, "要解散的吧")
	require.NoError(t, JoinBoard(board.ID, bob.ID))

	post := createTestPost(t, board.ID, bob.ID, "吧里的帖子")
	_, err := CreateComment(post.ID, alice.ID, "吧里的评论", nil)
	require.NoError(t, err)
	require.NoError(t, LikePost(post.ID, alice.ID))

	require.NoError(t, DeleteBoard(board.ID))

	_, err = GetBoard(board.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetPost(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var likes, comments, members int64
	db.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	db.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.DB.Model(&models.BoardMember{}).Where("board_id = ?", board.ID).Count(&members)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
	assert.Zero(t, members)

	// 作者身上的冗余计数回滚
	bobNow, _ := GetUser(bob.ID)
	assert.Equal(t, 0, bobNow.PostCount)
	aliceNow, _ := GetUser(alice.ID)
	assert.Equal(t, 0, aliceNow.CommentCount)
}
