package journal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
)

func TestService_Record(t *testing.T) {
	type testCase struct {
		name      string
		entry     journal.Entry
		createErr error
		wantLevel journal.Level
	}

	tests := []testCase{
		{
			name:      "DefaultsLevel",
			entry:     journal.Entry{Component: journal.ComponentOrchestrator, Message: "started"},
			wantLevel: journal.LevelInfo,
		},
		{
			name:      "KeepsLevel",
			entry:     journal.Entry{Level: journal.LevelError, Component: journal.ComponentBigCapital, Message: "rejected"},
			wantLevel: journal.LevelError,
		},
		{
			name:      "StoreErrorSwallowed",
			entry:     journal.Entry{Level: journal.LevelWarning, Component: journal.ComponentPaperless, Message: "slow"},
			createErr: errors.New("db down"),
			wantLevel: journal.LevelWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := journal.NewMockRepository(ctrl)
			repo.EXPECT().
				Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, e *journal.Entry) error {
					assert.Equal(t, tt.wantLevel, e.Level)
					assert.Equal(t, tt.entry.Message, e.Message)
					assert.False(t, e.CreatedAt.IsZero())

					return tt.createErr
				})

			journal.NewService(repo).Record(context.Background(), tt.entry)
		})
	}
}

func TestService_List(t *testing.T) {
	id := int64(42)

	type testCase struct {
		name       string
		filter     journal.Filter
		wantFilter *journal.Filter
		wantErr    error
	}

	tests := []testCase{
		{
			name:       "DefaultLimit",
			filter:     journal.Filter{Offset: -3},
			wantFilter: &journal.Filter{Limit: journal.DefaultLimit},
		},
		{
			name:       "Filtered",
			filter:     journal.Filter{Level: new(journal.LevelError), SourceID: &id, Limit: 5, Offset: 10},
			wantFilter: &journal.Filter{Level: new(journal.LevelError), SourceID: &id, Limit: 5, Offset: 10},
		},
		{
			name:    "UnknownLevel",
			filter:  journal.Filter{Level: new(journal.Level("verbose"))},
			wantErr: journal.ErrInvalidLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := journal.NewMockRepository(ctrl)
			if tt.wantFilter != nil {
				repo.EXPECT().
					List(gomock.Any(), *tt.wantFilter).
					Return([]*journal.Entry{{Message: "x"}}, nil)
			}

			entries, err := journal.NewService(repo).List(context.Background(), tt.filter)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}
