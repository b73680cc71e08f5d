package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/queue"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func newNewsletterService(t *testing.T, db *gorm.DB) (*NewsletterService, *queue.Queue) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := queue.NewQueue(client, "newsletter:send")

	cfg := &config.Config{
		Newsletter: config.NewsletterConfig{BatchSize: 2},
	}
	svc := NewNewsletterService(repository.NewNewsletterRepository(db), q, nil, cfg)
	return svc, q
}

func TestNewsletterService_Subscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newNewsletterService(t, db)

	req := &dto.SubscribeNewsletterRequest{Email: "awa@example.com", FirstName: "Awa"}
	require.NoError(t, svc.Subscribe(req))

	// 重复订阅报错
	assert.ErrorIs(t, svc.Subscribe(req), ErrAlreadySubscribed)

	// 退订后重新订阅恢复激活状态
	require.NoError(t, svc.Unsubscribe("awa@example.com"))
	require.NoError(t, svc.Subscribe(req))

	subscriber, err := repository.NewNewsletterRepository(db).GetSubscriberByEmail("awa@example.com")
	require.NoError(t, err)
	assert.True(t, subscriber.IsActive)
	assert.Nil(t, subscriber.UnsubscribedAt)
}

func TestNewsletterService_Unsubscribe_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, _ := newNewsletterService(t, db)

	assert.ErrorIs(t, svc.Unsubscribe("inconnu@example.com"), ErrSubscriberNotFound)
}

func TestNewsletterService_Send(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc, q := newNewsletterService(t, db)

	// 三个活跃订阅者加一个退订的
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, svc.Subscribe(&dto.SubscribeNewsletterRequest{Email: email}))
	}
	require.NoError(t, svc.Subscribe(&dto.SubscribeNewsletterRequest{Email: "gone@example.com"}))
	require.NoError(t, svc.Unsubscribe("gone@example.com"))

	ctx := context.Background()
	newsletter, enqueued, err := svc.Send(ctx, &dto.SendNewsletterRequest{
		Title:   "Nouveautés",
		Subject: "Quoi de neuf",
		Content: "<p>Contenu</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, enqueued)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)

	// 发送记录
	reloaded, err := repository.NewNewsletterRepository(db).GetByID(newsletter.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsSent)
	assert.Equal(t, 3, reloaded.SentCount)
	assert.NotNil(t, reloaded.SentAt)

	// 队列消息带着通讯内容
	msg, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, newsletter.ID, msg.NewsletterID)
	assert.Equal(t, "Quoi de neuf", msg.Subject)
}
