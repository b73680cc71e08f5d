package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/softskills/softskills_go_server/internal/model"
	"github.com/softskills/softskills_go_server/internal/model/dto"
	"github.com/softskills/softskills_go_server/internal/pkg/ws"
	"github.com/softskills/softskills_go_server/internal/repository"
	"github.com/softskills/softskills_go_server/internal/testutil"
)

func newCoachingService(db *gorm.DB) *CoachingService {
	return NewCoachingService(
		repository.NewCoachingRepository(db),
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		ws.NewHub(),
	)
}

func TestCoachingService_BookSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID, testutil.WithHourlyRate(60.00))

	scheduledAt := time.Now().Add(72 * time.Hour)
	session, err := svc.BookSession(client.ID, &dto.BookSessionRequest{
		CoachID:         coach.ID,
		Title:           "Préparation entretien",
		ScheduledAt:     scheduledAt.Format(time.RFC3339),
		DurationMinutes: 90,
	})
	require.NoError(t, err)

	// 价格 = 时薪 x 时长
	assert.InDelta(t, 90.00, session.Price, 0.001)
	assert.Equal(t, model.SessionScheduled, session.Status)
	assert.False(t, session.IsPaid)
}

func TestCoachingService_BookSession_OverlapRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)

	scheduledAt := time.Now().Add(72 * time.Hour)
	_, err := svc.BookSession(client.ID, &dto.BookSessionRequest{
		CoachID:     coach.ID,
		Title:       "Première session",
		ScheduledAt: scheduledAt.Format(time.RFC3339),
	})
	require.NoError(t, err)

	// 同教练同时段第二次预约被拒
	_, err = svc.BookSession(other.ID, &dto.BookSessionRequest{
		CoachID:     coach.ID,
		Title:       "Session en conflit",
		ScheduledAt: scheduledAt.Add(30 * time.Minute).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrTimeSlotTaken)
}

func TestCoachingService_BookSession_PastTime(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)

	_, err := svc.BookSession(client.ID, &dto.BookSessionRequest{
		CoachID:     coach.ID,
		Title:       "Session passée",
		ScheduledAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrInvalidScheduleTime)
}

func TestCoachingService_BookSession_SubscriberCovered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)
	plan := testutil.TestPlan(t, db)
	testutil.TestSubscription(t, db, client.ID, plan.ID,
		testutil.WithSubscriptionStatus(model.SubscriptionActive))

	session, err := svc.BookSession(client.ID, &dto.BookSessionRequest{
		CoachID:     coach.ID,
		Title:       "Session incluse",
		ScheduledAt: time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	// 订阅额度内直接确认
	assert.True(t, session.IsPaid)
	assert.Equal(t, model.SessionConfirmed, session.Status)
}

func TestCoachingService_CancelSession_DeadlinePassed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)

	session := &model.CoachingSession{
		ClientID:        client.ID,
		CoachID:         coach.ID,
		Title:           "Session imminente",
		ScheduledAt:     time.Now().Add(2 * time.Hour),
		DurationMinutes: 60,
		Status:          model.SessionScheduled,
		Price:           60.00,
	}
	require.NoError(t, db.Create(session).Error)

	// 开始前 24 小时内客户不能取消
	err := svc.CancelSession(client.ID, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotCancelable)

	// 教练不受该限制
	require.NoError(t, svc.CancelSession(coachUser.ID, session.ID))
}

func TestCoachingService_Feedback_UpdatesCoachRating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)

	session := &model.CoachingSession{
		ClientID:        client.ID,
		CoachID:         coach.ID,
		Title:           "Session terminée",
		ScheduledAt:     time.Now().Add(-2 * time.Hour),
		DurationMinutes: 60,
		Status:          model.SessionCompleted,
		Price:           60.00,
		IsPaid:          true,
	}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.SubmitFeedback(client.ID, session.ID, &dto.SessionFeedbackRequest{
		Rating:  5,
		Comment: "Excellent coaching",
	})
	require.NoError(t, err)

	// 教练评分被重算
	reloaded, err := repository.NewCoachingRepository(db).GetCoachByID(coach.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, reloaded.Rating, 0.001)
	assert.Equal(t, 1, reloaded.RatingCount)

	// 同一会话不能反馈两次
	_, err = svc.SubmitFeedback(client.ID, session.ID, &dto.SessionFeedbackRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyGaveFeedback)
}

func TestCoachingService_Feedback_RequiresCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newCoachingService(db)

	client := testutil.TestUser(t, db)
	coachUser := testutil.TestUser(t, db)
	coach := testutil.TestCoach(t, db, coachUser.ID)

	session := &model.CoachingSession{
		ClientID:        client.ID,
		CoachID:         coach.ID,
		Title:           "Session à venir",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
		Status:          model.SessionScheduled,
		Price:           60.00,
	}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.SubmitFeedback(client.ID, session.ID, &dto.SessionFeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
}
