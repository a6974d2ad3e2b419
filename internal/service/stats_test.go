package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"dicebot/internal/model"
	repoMocks "dicebot/internal/repository/mocks"
	"dicebot/internal/service/mocks"
)

type StatsServiceTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockRepo  *repoMocks.MockRollStore
	mockCache *mocks.MockLeaderboardCache
	service   *StatsService
	ctx       context.Context
}

func (s *StatsServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = repoMocks.NewMockRollStore(s.mockCtrl)
	s.mockCache = mocks.NewMockLeaderboardCache(s.mockCtrl)
	s.service = NewStatsService(s.mockRepo, s.mockCache)
	s.ctx = context.Background()
}

func (s *StatsServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}

func roll(id, userID int64, die, result int) *model.Roll {
	return &model.Roll{ID: id, UserID: userID, DieSize: die, Result: result}
}

func (s *StatsServiceTestSuite) TestAverages_RunningPairwise() {
	s.mockRepo.EXPECT().GetAllByUserID(s.ctx, int64(1)).Return([]*model.Roll{
		roll(1, 1, 100, 10),
		roll(2, 1, 100, 20),
		roll(3, 1, 100, 30),
	}, nil)

	averages, err := s.service.Averages(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]model.DieAverage{{DieSize: 100, Average: 22.5}}, averages)
}

func (s *StatsServiceTestSuite) TestAverages_PerDieSortedBySize() {
	s.mockRepo.EXPECT().GetAllByUserID(s.ctx, int64(1)).Return([]*model.Roll{
		roll(1, 1, 20, 7),
		roll(2, 1, 6, 2),
		roll(3, 1, 20, 10),
		roll(4, 1, 6, 5),
	}, nil)

	averages, err := s.service.Averages(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]model.DieAverage{
		{DieSize: 6, Average: 3.5},
		{DieSize: 20, Average: 8.5},
	}, averages)
}

func (s *StatsServiceTestSuite) TestAverages_NoRolls() {
	s.mockRepo.EXPECT().GetAllByUserID(s.ctx, int64(9)).Return([]*model.Roll{}, nil)

	averages, err := s.service.Averages(s.ctx, 9)
	s.Require().NoError(err)
	s.Empty(averages)
}

func (s *StatsServiceTestSuite) TestAverages_StoreFailure() {
	storeErr := errors.New("boom")
	s.mockRepo.EXPECT().GetAllByUserID(s.ctx, int64(1)).Return(nil, storeErr)

	_, err := s.service.Averages(s.ctx, 1)
	s.ErrorIs(err, storeErr)
}

func (s *StatsServiceTestSuite) TestLeaderboard_CacheMissComputesAndStores() {
	// A rolled 40 once. B rolled 60 then 80 for a running average of 70.
	rolls := []*model.Roll{
		roll(1, 100, 100, 40),
		roll(2, 200, 100, 60),
		roll(3, 200, 100, 80),
	}
	expected := []*model.LeaderboardEntry{
		{UserID: 200, Average: 70, Rolls: 2},
		{UserID: 100, Average: 40, Rolls: 1},
	}

	gomock.InOrder(
		s.mockCache.EXPECT().Get(s.ctx, 100).Return(nil, false, nil),
		s.mockCache.EXPECT().Version(s.ctx, 100).Return(int64(3), nil),
		s.mockRepo.EXPECT().GetByDieSize(s.ctx, 100).Return(rolls, nil),
		s.mockCache.EXPECT().Set(s.ctx, 100, int64(3), expected).Return(true, nil),
	)

	board, err := s.service.Leaderboard(s.ctx, 100)
	s.Require().NoError(err)
	s.Equal(expected, board)
}

func (s *StatsServiceTestSuite) TestLeaderboard_CacheHitSkipsStore() {
	cached := []*model.LeaderboardEntry{{UserID: 5, Average: 12, Rolls: 4}}
	s.mockCache.EXPECT().Get(s.ctx, 20).Return(cached, true, nil)

	board, err := s.service.Leaderboard(s.ctx, 20)
	s.Require().NoError(err)
	s.Equal(cached, board)
}

func (s *StatsServiceTestSuite) TestLeaderboard_CacheErrorFallsBackToStore() {
	s.mockCache.EXPECT().Get(s.ctx, 6).Return(nil, false, errors.New("redis down"))
	s.mockCache.EXPECT().Version(s.ctx, 6).Return(int64(0), nil)
	s.mockRepo.EXPECT().GetByDieSize(s.ctx, 6).Return([]*model.Roll{roll(1, 1, 6, 3)}, nil)
	s.mockCache.EXPECT().Set(s.ctx, 6, int64(0), gomock.Any()).Return(false, errors.New("redis down"))

	board, err := s.service.Leaderboard(s.ctx, 6)
	s.Require().NoError(err)
	s.Require().Len(board, 1)
	s.Equal(float64(3), board[0].Average)
}

func (s *StatsServiceTestSuite) TestLeaderboard_NoCache() {
	svc := NewStatsService(s.mockRepo, nil)
	s.mockRepo.EXPECT().GetByDieSize(s.ctx, 100).Return([]*model.Roll{}, nil)

	board, err := svc.Leaderboard(s.ctx, 100)
	s.Require().NoError(err)
	s.Empty(board)
}

func (s *StatsServiceTestSuite) TestLeaderboard_StoreFailure() {
	storeErr := errors.New("boom")
	s.mockCache.EXPECT().Get(s.ctx, 100).Return(nil, false, nil)
	s.mockCache.EXPECT().Version(s.ctx, 100).Return(int64(0), nil)
	s.mockRepo.EXPECT().GetByDieSize(s.ctx, 100).Return(nil, storeErr)

	_, err := s.service.Leaderboard(s.ctx, 100)
	s.ErrorIs(err, storeErr)
}

func (s *StatsServiceTestSuite) TestLeaderboard_VersionErrorSkipsCacheWrite() {
	s.mockCache.EXPECT().Get(s.ctx, 20).Return(nil, false, nil)
	s.mockCache.EXPECT().Version(s.ctx, 20).Return(int64(0), errors.New("redis down"))
	s.mockRepo.EXPECT().GetByDieSize(s.ctx, 20).Return([]*model.Roll{roll(1, 1, 20, 12)}, nil)

	board, err := s.service.Leaderboard(s.ctx, 20)
	s.Require().NoError(err)
	s.Len(board, 1)
}
