package service

import (
	"errors"
	"testing"

	"skill_quest_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDefinitionStore struct {
	definitions []model.Achievement
	listCalls   int
	err         error
}

func (f *fakeDefinitionStore) ListAll() ([]model.Achievement, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.definitions, nil
}

type fakeUnlockStore struct {
	unlocks   map[[2]uint]*model.UserAchievement
	insertErr error
	findErr   error
}

func newFakeUnlockStore() *fakeUnlockStore {
	return &fakeUnlockStore{unlocks: make(map[[2]uint]*model.UserAchievement)}
}

func (f *fakeUnlockStore) FindUnlock(userID, achievementID uint) (*model.UserAchievement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if u, ok := f.unlocks[[2]uint{userID, achievementID}]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUnlockStore) CreateUnlock(unlock *model.UserAchievement) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	key := [2]uint{unlock.UserID, unlock.AchievementID}
	if _, exists := f.unlocks[key]; exists {
		return errors.New("duplicate entry")
	}
	f.unlocks[key] = unlock
	return nil
}

func achievementDef(id uint, name string) model.Achievement {
	a := model.Achievement{Name: name}
	a.ID = id
	return a
}

func newGateway(defs *fakeDefinitionStore, unlocks *fakeUnlockStore) *AchievementService {
	return &AchievementService{
		Definitions: defs,
		Unlocks:     unlocks,
	}
}

func TestUnlock_Idempotent(t *testing.T) {
	defs := &fakeDefinitionStore{definitions: []model.Achievement{
		achievementDef(1, AchievementPersonalBest),
	}}
	unlocks := newFakeUnlockStore()
	svc := newGateway(defs, unlocks)

	first := svc.Unlock(42, AchievementPersonalBest)
	require.NotNil(t, first)
	assert.Equal(t, uint(42), first.UserID)
	assert.Equal(t, uint(1), first.AchievementID)
	assert.False(t, first.UnlockedAt.IsZero())

	second := svc.Unlock(42, AchievementPersonalBest)
	assert.Nil(t, second)
	assert.Len(t, unlocks.unlocks, 1)
}

func TestUnlock_UnknownAchievementIsSilentNoop(t *testing.T) {
	defs := &fakeDefinitionStore{definitions: []model.Achievement{
		achievementDef(1, AchievementPersonalBest),
	}}
	unlocks := newFakeUnlockStore()
	svc := newGateway(defs, unlocks)

	record := svc.Unlock(42, "No Such Badge")
	assert.Nil(t, record)
	assert.Empty(t, unlocks.unlocks)
}

func TestUnlock_DistinctUsersAndAchievements(t *testing.T) {
	defs := &fakeDefinitionStore{definitions: []model.Achievement{
		achievementDef(1, AchievementPersonalBest),
		achievementDef(2, AchievementComeback),
	}}
	unlocks := newFakeUnlockStore()
	svc := newGateway(defs, unlocks)

	require.NotNil(t, svc.Unlock(1, AchievementPersonalBest))
	require.NotNil(t, svc.Unlock(1, AchievementComeback))
	require.NotNil(t, svc.Unlock(2, AchievementPersonalBest))
	assert.Len(t, unlocks.unlocks, 3)
}

func TestUnlock_InsertFailureIsSwallowed(t *testing.T) {
	defs := &fakeDefinitionStore{definitions: []model.Achievement{
		achievementDef(1, AchievementPersonalBest),
	}}
	unlocks := newFakeUnlockStore()
	unlocks.insertErr = errors.New("connection lost")
	svc := newGateway(defs, unlocks)

	assert.NotPanics(t, func() {
		record := svc.Unlock(42, AchievementPersonalBest)
		assert.Nil(t, record)
	})
}

func TestUnlock_DefinitionLoadFailureIsSwallowed(t *testing.T) {
	defs := &fakeDefinitionStore{err: errors.New("db down")}
	svc := newGateway(defs, newFakeUnlockStore())

	record := svc.Unlock(42, AchievementPersonalBest)
	assert.Nil(t, record)
}

func TestUnlock_CacheIsLazyAndInvalidatable(t *testing.T) {
	defs := &fakeDefinitionStore{definitions: []model.Achievement{
		achievementDef(1, AchievementPersonalBest),
	}}
	unlocks := newFakeUnlockStore()
	svc := newGateway(defs, unlocks)

	svc.Unlock(1, AchievementPersonalBest)
	svc.Unlock(2, AchievementPersonalBest)
	assert.Equal(t, 1, defs.listCalls, "definitions should load once")

	// 新配置的成就要在缓存失效后才可见
	defs.definitions = append(defs.definitions, achievementDef(2, AchievementImprovements))
	assert.Nil(t, svc.Unlock(1, AchievementImprovements))

	svc.InvalidateCache()
	assert.NotNil(t, svc.Unlock(1, AchievementImprovements))
	assert.Equal(t, 2, defs.listCalls)
}
