package service

import (
	"errors"
	"testing"

	"skill_quest_backend/internal/model"
	"skill_quest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	user      *model.User
	updates   []map[string]interface{}
	updateErr error
}

func (f *fakeUserStore) FindByID(id uint) (*model.User, error) {
	if f.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeUserStore) UpdateFields(userID uint, fields map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fields)
	return nil
}

func newSessionService(store *fakeUserStore) *SessionService {
	thresholds := defaultThresholds()
	achievements := newGateway(
		&fakeDefinitionStore{definitions: []model.Achievement{
			achievementDef(1, AchievementPersonalBest),
			achievementDef(2, AchievementComeback),
			achievementDef(3, AchievementImprovements),
		}},
		newFakeUnlockStore(),
	)
	return NewSessionService(
		store,
		NewRatingService(thresholds, thresholds),
		NewProgressionService(),
		achievements,
	)
}

func TestCompleteDiagnostic_PersistsPlacementAndUnlocks(t *testing.T) {
	store := &fakeUserStore{user: &model.User{}}
	svc := newSessionService(store)

	result, err := svc.CompleteDiagnostic(1, 8, nil)
	require.NoError(t, err)
	assert.Equal(t, 1300, result.Rating)
	assert.Equal(t, "Platinum", result.Rank)
	assert.Equal(t, 8, result.Level)
	assert.Contains(t, result.UnlockedAchievements, AchievementPersonalBest)

	// 先落定级结果，再落进度字段
	require.Len(t, store.updates, 2)
	assert.Equal(t, true, store.updates[0]["diagnostic_completed"])
	assert.Equal(t, 1300, store.updates[0]["rating_current"])
	assert.Equal(t, 1300, store.updates[1]["last_session_rating"])
}

func TestCompleteDiagnostic_RejectsRepeatRun(t *testing.T) {
	// 已完成诊断的学员不允许重测覆盖评分
	store := &fakeUserStore{user: &model.User{
		DiagnosticCompleted: true,
		RatingCurrent:       1300,
	}}
	svc := newSessionService(store)

	_, err := svc.CompleteDiagnostic(1, 8, nil)
	assert.ErrorIs(t, err, util.ErrDiagnosticAlreadyDone)
	assert.Empty(t, store.updates)
}

func TestCompleteDiagnostic_UserNotFound(t *testing.T) {
	svc := newSessionService(&fakeUserStore{})

	_, err := svc.CompleteDiagnostic(1, 8, nil)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestCompleteDiagnostic_InvalidFinalLevel(t *testing.T) {
	svc := newSessionService(&fakeUserStore{user: &model.User{}})

	for _, level := range []int{0, 11} {
		_, err := svc.CompleteDiagnostic(1, level, nil)
		assert.ErrorIs(t, err, util.ErrInvalidFinalLevel, "level %d", level)
	}
}

func TestCompleteDiagnostic_PersistFailureIsRetryable(t *testing.T) {
	store := &fakeUserStore{
		user:      &model.User{},
		updateErr: errors.New("connection lost"),
	}
	svc := newSessionService(store)

	_, err := svc.CompleteDiagnostic(1, 8, nil)
	assert.ErrorIs(t, err, util.ErrDiagnosticPersist)
}

func TestCompletePractice_SettlesWithoutRecalibration(t *testing.T) {
	store := &fakeUserStore{user: &model.User{
		RatingCurrent:       1300,
		Level:               8,
		BestRatingEver:      1300,
		LastSessionRating:   1300,
		DiagnosticCompleted: true,
	}}
	svc := newSessionService(store)

	result, err := svc.CompletePractice(1, 1300, 1350)
	require.NoError(t, err)
	assert.Equal(t, 1350, result.Rating)
	assert.Equal(t, "Platinum", result.Rank)
	assert.Equal(t, 8, result.Level)
	assert.Contains(t, result.UnlockedAchievements, AchievementPersonalBest)
}
