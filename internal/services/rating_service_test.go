package services

import (
	"testing"

	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/internal/testutil"
	"caterconnect_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRating_RecomputesAverage(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	worker := testutil.CreateUser(t, env.db, models.UserRoleWorker)

	values := []int{5, 4, 4}
	for _, value := range values {
		job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Rated gig", worker.ID)
		rating, err := env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{
			JobID:       job.ID,
			RatedUserID: worker.ID,
			Value:       value,
			Review:      "  Punctual  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Punctual", rating.Review)
	}

	stored := env.reloadUser(t, worker.ID)
	assert.InDelta(t, 4.33, stored.AverageRating, 0.001, "Среднее округляется до 2 знаков")
	assert.Equal(t, 3, stored.RatingCount)

	messages := env.messagesFor(t, worker.ID)
	assert.Contains(t, messages, "You received a 5-star rating!")
	assert.Contains(t, messages, "You received a 4-star rating!")
	assert.Len(t, env.ratings.GetUserRatings(env.db, worker.ID), 3)
}

func TestSubmitRating_TwoWorkersRateOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	cook := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	waiter := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Shared event", cook.ID, waiter.ID)

	_, err := env.ratings.SubmitRating(env.db, cook.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: owner.ID, Value: 5})
	require.NoError(t, err)
	_, err = env.ratings.SubmitRating(env.db, waiter.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: owner.ID, Value: 4})
	require.NoError(t, err)

	stored := env.reloadUser(t, owner.ID)
	assert.InDelta(t, 4.5, stored.AverageRating, 0.001)
	assert.Equal(t, 2, stored.RatingCount)
}

func TestSubmitRating_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	worker := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Once only", worker.ID)

	req := &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: worker.ID, Value: 3}
	_, err := env.ratings.SubmitRating(env.db, owner.ID, req)
	require.NoError(t, err)

	req.Value = 5
	_, err = env.ratings.SubmitRating(env.db, owner.ID, req)
	assertAppError(t, err, apperrors.ErrDuplicateRating)

	stored := env.reloadUser(t, worker.ID)
	assert.InDelta(t, 3.0, stored.AverageRating, 0.001, "Неудачная попытка не меняет среднее")
	assert.Equal(t, 1, stored.RatingCount)
}

func TestSubmitRating_Rejections(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	worker := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Checks", worker.ID)

	for _, value := range []int{0, 6, -1} {
		_, err := env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: worker.ID, Value: value})
		assertAppError(t, err, apperrors.ErrInvalidRating)
	}

	_, err := env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: owner.ID, Value: 5})
	assertAppError(t, err, apperrors.ErrSelfRating)

	_, err = env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{
		JobID:       "00000000-0000-0000-0000-000000000000",
		RatedUserID: worker.ID,
		Value:       5,
	})
	assertAppError(t, err, apperrors.ErrJobNotFound)

	var count int64
	require.NoError(t, env.db.Model(&models.Rating{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHasUserRated(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	worker := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Lookup", worker.ID)

	rated, err := env.ratings.HasUserRated(env.db, job.ID, owner.ID, worker.ID)
	require.NoError(t, err)
	assert.False(t, rated)

	_, err = env.ratings.GetUserRating(env.db, job.ID, owner.ID, worker.ID)
	assertAppError(t, err, apperrors.ErrRatingNotFound)

	_, err = env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: worker.ID, Value: 4})
	require.NoError(t, err)

	rated, err = env.ratings.HasUserRated(env.db, job.ID, owner.ID, worker.ID)
	require.NoError(t, err)
	assert.True(t, rated)

	rating, err := env.ratings.GetUserRating(env.db, job.ID, owner.ID, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Value)

	rated, err = env.ratings.HasUserRated(env.db, job.ID, worker.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, rated, "Оценка направленная")
}

func TestSubmitRating_OnlyAfterCompletion(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	worker := testutil.CreateUser(t, env.db, models.UserRoleWorker)

	open := testutil.CreateJob(t, env.db, owner.ID, "Still open")
	testutil.CreateApplication(t, env.db, open.ID, worker.ID, models.ApplicationStatusStarted)

	_, err := env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{JobID: open.ID, RatedUserID: worker.ID, Value: 5})
	assertAppError(t, err, apperrors.ErrRatingJobNotCompleted)
	_, err = env.ratings.SubmitRating(env.db, worker.ID, &dto.SubmitRatingRequest{JobID: open.ID, RatedUserID: owner.ID, Value: 5})
	assertAppError(t, err, apperrors.ErrRatingJobNotCompleted)

	assert.Zero(t, env.reloadUser(t, worker.ID).RatingCount)
}

func TestSubmitRating_OnlyParticipants(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	hired := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	rejected := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	stranger := testutil.CreateUser(t, env.db, models.UserRoleWorker)
	otherOwner := testutil.CreateUser(t, env.db, models.UserRoleOwner)

	job := testutil.CreateCompletedJob(t, env.db, owner.ID, "Closed gig", hired.ID)
	testutil.CreateApplication(t, env.db, job.ID, rejected.ID, models.ApplicationStatusRejected)

	cases := map[string]struct {
		rater, rated string
	}{
		"stranger rates hired worker": {stranger.ID, hired.ID},
		"stranger rates owner":        {stranger.ID, owner.ID},
		"other owner rates worker":    {otherOwner.ID, hired.ID},
		"owner rates rejected worker": {owner.ID, rejected.ID},
		"rejected worker rates owner": {rejected.ID, owner.ID},
		"worker rates another worker": {hired.ID, rejected.ID},
		"owner rates unknown user":    {owner.ID, "00000000-0000-0000-0000-000000000000"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.ratings.SubmitRating(env.db, tc.rater, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: tc.rated, Value: 1})
			assertAppError(t, err, apperrors.ErrRatingNotParticipant)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Rating{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err := env.ratings.SubmitRating(env.db, hired.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: owner.ID, Value: 4})
	require.NoError(t, err, "Нанятый работник оценивает владельца")
	_, err = env.ratings.SubmitRating(env.db, owner.ID, &dto.SubmitRatingRequest{JobID: job.ID, RatedUserID: hired.ID, Value: 5})
	require.NoError(t, err)
}
