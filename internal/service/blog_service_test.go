package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func TestBlogService_GetPostBySlug_IncrementsViews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewBlogService(repository.NewBlogRepository(db))

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	found, err := svc.GetPostBySlug(post.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, found.ViewCount)

	found, err = svc.GetPostBySlug(post.Slug, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, found.ViewCount)
}

func TestBlogService_GetPostBySlug_DraftHidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewBlogService(repository.NewBlogRepository(db))

	author := testutil.TestUser(t, db)
	reader := testutil.TestUser(t, db)
	draft := testutil.TestPost(t, db, author.ID, testutil.WithPostStatus(model.PostDraft))

	_, err := svc.GetPostBySlug(draft.Slug, reader.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	// 作者本人可见
	found, err := svc.GetPostBySlug(draft.Slug, author.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)
	// 草稿不计浏览数
	assert.Equal(t, 0, found.ViewCount)
}

func TestBlogService_CreatePost_WithTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewBlogService(repository.NewBlogRepository(db))

	author := testutil.TestUser(t, db)

	post, err := svc.CreatePost(author.ID, &dto.CreatePostRequest{
		Title:   "Gérer son temps",
		Slug:    "gerer-son-temps",
		Content: "Quelques techniques pour mieux organiser ses journées de travail.",
		Tags:    []string{"Productivité", "Soft Skills"},
		Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PostPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)
	assert.Len(t, post.Tags, 2)
	assert.GreaterOrEqual(t, post.ReadTimeMinutes, 1)

	// 同名标签复用
	again, err := svc.CreatePost(author.ID, &dto.CreatePostRequest{
		Title:   "Autre article",
		Slug:    "autre-article",
		Content: "Contenu",
		Tags:    []string{"Productivité"},
	})
	require.NoError(t, err)

	tags, err := svc.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Equal(t, model.PostDraft, again.Status)
}

func TestBlogService_Comments_ApprovalFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewBlogService(repository.NewBlogRepository(db))

	author := testutil.TestUser(t, db)
	commenter := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	comment, err := svc.CreateComment(commenter.ID, post.ID, &dto.CreateBlogCommentRequest{
		Content: "Très utile, merci",
	})
	require.NoError(t, err)
	assert.False(t, comment.IsApproved)

	// 未审核不出现在列表里
	comments, err := svc.ListComments(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// 只有作者能审核
	err = svc.ApproveComment(commenter.ID, comment.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	require.NoError(t, svc.ApproveComment(author.ID, comment.ID))

	comments, err = svc.ListComments(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// 回复挂在父评论下
	reply, err := svc.CreateComment(author.ID, post.ID, &dto.CreateBlogCommentRequest{
		Content:  "Merci pour le retour",
		ParentID: &comment.ID,
	})
	require.NoError(t, err)
	require.NoError(t, svc.ApproveComment(author.ID, reply.ID))

	comments, err = svc.ListComments(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, reply.ID, comments[0].Replies[0].ID)
}

func TestBlogService_CreateComment_Closed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewBlogService(repository.NewBlogRepository(db))

	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)
	post.AllowComments = false
	require.NoError(t, db.Save(post).Error)

	_, err := svc.CreateComment(author.ID, post.ID, &dto.CreateBlogCommentRequest{Content: "Fermé"})
	assert.ErrorIs(t, err, ErrCommentsNotAllowed)
}
