package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sermon_sync/internal/config"
	"sermon_sync/internal/domain"
	"sermon_sync/internal/service/mocks"
	"sermon_sync/internal/testutil"
)

const testChannel = "UC-test-channel"

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	sermons   *mocks.MockSermonStore
	syncState *mocks.MockSyncStateStore
	txManager *mocks.MockTransactionManager
	publisher *mocks.MockPublisher

	cfg    config.SyncConfig
	logger *slog.Logger
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.sermons = mocks.NewMockSermonStore(s.ctrl)
	s.syncState = mocks.NewMockSyncStateStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.cfg = config.SyncConfig{
		ChannelID:     testChannel,
		MaxResults:    10,
		FailurePolicy: config.FailurePolicyDegrade,
	}

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source.EXPECT().ID().Return("youtube").AnyTimes()
	s.source.EXPECT().Name().Return("YouTube").AnyTimes()
	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SyncServiceTestSuite) newService(publisher Publisher) *SyncService {
	return NewSyncService(s.source, s.sermons, s.syncState, s.txManager, publisher, s.logger, s.cfg)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func video(id, title string) domain.VideoSummary {
	published := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	return domain.VideoSummary{
		VideoID:      id,
		Title:        title,
		Description:  "desc " + id,
		ChannelTitle: "Grace Church",
		PublishedAt:  &published,
		Thumbnails:   domain.Thumbnails{High: "https://img/" + id + "/hq.jpg"},
	}
}

func (s *SyncServiceTestSuite) TestSync_TwoNewVideos() {
	ctx := context.Background()
	videos := []domain.VideoSummary{video("a", "First"), video("b", "Second")}

	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(videos, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(&domain.VideoDetail{VideoID: "a", Duration: "PT1H30M45S"}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "b").Return(&domain.VideoDetail{VideoID: "b", Duration: "PT45S"}, nil)

	var stored []*domain.Sermon
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sermon *domain.Sermon) (int64, bool, error) {
			stored = append(stored, sermon)
			return int64(len(stored)), true, nil
		},
	).Times(2)

	gomock.InOrder(
		s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").Return(nil),
		s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "b").Return(nil),
		s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil),
	)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.OutcomeCreated).Return(nil).Times(2)

	result, err := s.newService(s.publisher).Sync(ctx, testChannel, 10)

	s.Require().NoError(err)
	s.Equal(domain.SyncResult{Created: 2, Updated: 0}, result)
	s.Require().Len(stored, 2)
	s.Equal("a", stored[0].YoutubeVideoID)
	s.Equal(testutil.Ptr(5445), stored[0].DurationSeconds)
	s.Equal(testutil.Ptr(45), stored[1].DurationSeconds)
	s.Equal(testutil.Ptr("https://www.youtube.com/watch?v=b"), stored[1].YoutubeURL)
	s.Equal(testutil.Ptr("Grace Church"), stored[1].Speaker)
	s.True(stored[0].IsActive)
}

func (s *SyncServiceTestSuite) TestSync_CreatedAndUpdated() {
	ctx := context.Background()
	videos := []domain.VideoSummary{video("known", "Old"), video("fresh", "New")}

	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(videos, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), gomock.Any()).Return(&domain.VideoDetail{Duration: "PT10M"}, nil).Times(2)
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sermon *domain.Sermon) (int64, bool, error) {
			if sermon.YoutubeVideoID == "known" {
				return 7, false, nil
			}
			return 8, true, nil
		},
	).Times(2)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, gomock.Any()).Return(nil).Times(2)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.OutcomeUpdated).Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.OutcomeCreated).Return(nil)

	result, err := s.newService(s.publisher).Sync(ctx, testChannel, 10)

	s.Require().NoError(err)
	s.Equal(domain.SyncResult{Created: 1, Updated: 1}, result)
}

func (s *SyncServiceTestSuite) TestSync_NotConfigured() {
	for _, policy := range []string{config.FailurePolicyDegrade, config.FailurePolicyAbort} {
		s.cfg.FailurePolicy = policy
		s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(nil, domain.ErrSourceNotConfigured)

		result, err := s.newService(s.publisher).Sync(context.Background(), testChannel, 10)

		s.NoError(err, policy)
		s.Equal(domain.SyncResult{}, result, policy)
	}
}

func (s *SyncServiceTestSuite) TestSync_DefaultMaxResults() {
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, DefaultMaxResults).Return(nil, nil)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)

	result, err := s.newService(nil).Sync(context.Background(), testChannel, 0)

	s.NoError(err)
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_ListErrorDegrades() {
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(nil, errors.New("quota exceeded"))

	result, err := s.newService(s.publisher).Sync(context.Background(), testChannel, 10)

	s.NoError(err)
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_ListErrorAborts() {
	s.cfg.FailurePolicy = config.FailurePolicyAbort
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(nil, errors.New("quota exceeded"))

	result, err := s.newService(s.publisher).Sync(context.Background(), testChannel, 10)

	s.ErrorContains(err, "quota exceeded")
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_DetailFailureDegradesToAbsentDuration() {
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return([]domain.VideoSummary{video("a", "First")}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(nil, errors.New("timeout"))

	var stored *domain.Sermon
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sermon *domain.Sermon) (int64, bool, error) {
			stored = sermon
			return 1, true, nil
		},
	)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").Return(nil)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)

	result, err := s.newService(nil).Sync(context.Background(), testChannel, 10)

	s.Require().NoError(err)
	s.Equal(domain.SyncResult{Created: 1}, result)
	s.Require().NotNil(stored)
	s.Nil(stored.DurationSeconds)
	s.Equal("First", stored.Title)
}

func (s *SyncServiceTestSuite) TestSync_VideoNotFoundIsMissUnderAbort() {
	s.cfg.FailurePolicy = config.FailurePolicyAbort
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return([]domain.VideoSummary{video("a", "First")}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(nil, domain.ErrVideoNotFound)
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").Return(nil)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)

	result, err := s.newService(nil).Sync(context.Background(), testChannel, 10)

	s.NoError(err)
	s.Equal(domain.SyncResult{Created: 1}, result)
}

func (s *SyncServiceTestSuite) TestSync_DetailFailureAborts() {
	s.cfg.FailurePolicy = config.FailurePolicyAbort
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return([]domain.VideoSummary{video("a", "First")}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(nil, errors.New("timeout"))

	result, err := s.newService(nil).Sync(context.Background(), testChannel, 10)

	s.ErrorContains(err, "fetch video detail")
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_StoreFailureAbortsPass() {
	videos := []domain.VideoSummary{video("a", "First"), video("b", "Second"), video("c", "Third")}

	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(videos, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(&domain.VideoDetail{Duration: "PT1M"}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "b").Return(&domain.VideoDetail{Duration: "PT1M"}, nil)
	gomock.InOrder(
		s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil),
		s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(0), false, errors.New("connection reset")),
	)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").Return(nil)

	result, err := s.newService(nil).Sync(context.Background(), testChannel, 10)

	s.ErrorContains(err, "connection reset")
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_PublishFailureDoesNotAbort() {
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return([]domain.VideoSummary{video("a", "First")}, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(&domain.VideoDetail{Duration: "PT2M"}, nil)
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").Return(nil)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), domain.OutcomeCreated).Return(errors.New("channel closed"))

	result, err := s.newService(s.publisher).Sync(context.Background(), testChannel, 10)

	s.NoError(err)
	s.Equal(domain.SyncResult{Created: 1}, result)
}

func (s *SyncServiceTestSuite) TestSync_CancelledDuringItemDelay() {
	s.cfg.ItemDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	videos := []domain.VideoSummary{video("a", "First"), video("b", "Second")}
	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(videos, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), "a").Return(&domain.VideoDetail{Duration: "PT1M"}, nil)
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, "a").DoAndReturn(
		func(context.Context, string, string) error {
			cancel()
			return nil
		},
	)

	result, err := s.newService(nil).Sync(ctx, testChannel, 10)

	s.ErrorIs(err, context.Canceled)
	s.Equal(domain.SyncResult{}, result)
}

func (s *SyncServiceTestSuite) TestSync_ItemDelayBetweenItems() {
	s.cfg.ItemDelay = 20 * time.Millisecond
	videos := []domain.VideoSummary{video("a", "First"), video("b", "Second")}

	s.source.EXPECT().ListRecent(gomock.Any(), testChannel, 10).Return(videos, nil)
	s.source.EXPECT().FetchDetail(gomock.Any(), gomock.Any()).Return(&domain.VideoDetail{Duration: "PT1M"}, nil).Times(2)
	s.sermons.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil).Times(2)
	s.syncState.EXPECT().Checkpoint(gomock.Any(), testChannel, gomock.Any()).Return(nil).Times(2)
	s.syncState.EXPECT().MarkCompleted(gomock.Any(), testChannel, gomock.Any()).Return(nil)

	start := time.Now()
	_, err := s.newService(nil).Sync(context.Background(), testChannel, 10)

	s.NoError(err)
	s.GreaterOrEqual(time.Since(start), 40*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestStatus() {
	synced := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.source.EXPECT().Configured().Return(true)
	s.syncState.EXPECT().Get(gomock.Any(), testChannel).Return(&domain.SyncState{
		ChannelID:    testChannel,
		LastSyncedAt: &synced,
		TotalSynced:  12,
	}, nil)

	status, err := s.newService(nil).Status(context.Background(), testChannel)

	s.Require().NoError(err)
	s.True(status.Configured)
	s.Equal("YouTube API configured", status.Message)
	s.Equal(&synced, status.LastSyncedAt)
	s.Equal(int64(12), status.TotalSynced)
}

func (s *SyncServiceTestSuite) TestStatus_SyncStateUnavailable() {
	s.source.EXPECT().Configured().Return(true)
	s.syncState.EXPECT().Get(gomock.Any(), testChannel).Return(nil, errors.New("connection refused"))

	status, err := s.newService(nil).Status(context.Background(), testChannel)

	s.Require().NoError(err)
	s.True(status.Configured)
	s.Equal("YouTube API configured", status.Message)
	s.Nil(status.LastSyncedAt)
	s.Zero(status.TotalSynced)
}

func (s *SyncServiceTestSuite) TestStatus_NotConfiguredWithoutChannel() {
	s.source.EXPECT().Configured().Return(false)

	status, err := s.newService(nil).Status(context.Background(), "")

	s.Require().NoError(err)
	s.False(status.Configured)
	s.Equal("YouTube API not configured", status.Message)
	s.Nil(status.LastSyncedAt)
}
