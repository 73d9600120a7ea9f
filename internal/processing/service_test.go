package processing_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
	"github.com/MrJamesThe3rd/paperbridge/internal/expense"
	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
	"github.com/MrJamesThe3rd/paperbridge/internal/processing/processingtest"
	"github.com/MrJamesThe3rd/paperbridge/internal/remote"
	"github.com/MrJamesThe3rd/paperbridge/internal/retry"
)

type fixture struct {
	svc      *processing.Service
	store    *processingtest.Store
	source   *processing.MockSourceClient
	target   *processing.MockTargetClient
	mappings *processing.MockMappingLookup
}

func newFixture(t *testing.T, opts processing.Options) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		store:    processingtest.New(),
		source:   processing.NewMockSourceClient(ctrl),
		target:   processing.NewMockTargetClient(ctrl),
		mappings: processing.NewMockMappingLookup(ctrl),
	}

	if opts.Retry.Sleep == nil {
		opts.Retry.Sleep = func(context.Context, time.Duration) error { return nil }
	}

	f.svc = processing.NewService(f.store, f.source, f.target, f.mappings, opts)

	return f
}

func invoiceDoc(id int64) *document.Document {
	return &document.Document{
		ID:            id,
		Title:         "Invoice_2024_001.pdf",
		Content:       "Invoice content with amount $1,500.00",
		Correspondent: "ACME Corp",
	}
}

func unavailable() error {
	return &remote.Error{Op: "create expense", StatusCode: http.StatusServiceUnavailable}
}

func TestService_ProcessDocument_EndToEnd(t *testing.T) {
	f := newFixture(t, processing.Options{})
	ctx := context.Background()

	var sent expense.Payload

	f.source.EXPECT().GetDocument(gomock.Any(), int64(123)).Return(invoiceDoc(123), nil)
	f.target.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p expense.Payload) (*expense.Submission, error) {
			sent = p
			return &expense.Submission{TargetID: "501", Status: "published"}, nil
		})

	outcome, err := f.svc.ProcessDocument(ctx, 123, false)
	require.NoError(t, err)

	assert.Equal(t, processing.StatusCompleted, outcome.Status)
	assert.Equal(t, int64(123), outcome.SourceID)
	require.NotNil(t, outcome.TargetID)
	assert.Equal(t, "501", *outcome.TargetID)

	assert.Equal(t, "Invoice 2024 001", sent.Reference)
	require.NotNil(t, sent.Amount)
	assert.True(t, decimal.RequireFromString("1500.00").Equal(*sent.Amount))
	assert.Equal(t, "USD", sent.Currency)
	require.NotNil(t, sent.Vendor)
	assert.Equal(t, "ACME Corp", *sent.Vendor)

	rec, err := f.store.GetDocument(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, rec.Status)
	require.NotNil(t, rec.TargetID)
	assert.Equal(t, "501", *rec.TargetID)
	assert.NotNil(t, rec.ProcessedAt)
	assert.Nil(t, rec.ErrorMessage)
	assert.Equal(t, "1500.00", rec.Metadata[processing.MetaAmount])
	assert.Equal(t, "Invoice_2024_001.pdf", rec.Title())
}

func TestService_ProcessDocument_SkipsCompleted(t *testing.T) {
	type testCase struct {
		name   string
		status processing.Status
	}

	tests := []testCase{
		{name: "Completed", status: processing.StatusCompleted},
		{name: "Skipped", status: processing.StatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations: any remote call fails the test.
			f := newFixture(t, processing.Options{})
			f.store.Seed(&processing.ProcessedDocument{SourceID: 7, Status: tt.status, TargetID: new("42")})

			outcome, err := f.svc.ProcessDocument(context.Background(), 7, false)
			require.NoError(t, err)

			assert.Equal(t, processing.StatusSkipped, outcome.Status)
			assert.Contains(t, outcome.Message, "already")

			rec, err := f.store.GetDocument(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, tt.status, rec.Status)
		})
	}
}

func TestService_ProcessDocument_ForceReprocessesCompleted(t *testing.T) {
	f := newFixture(t, processing.Options{})
	f.store.Seed(&processing.ProcessedDocument{SourceID: 123, Status: processing.StatusCompleted, TargetID: new("1")})

	f.source.EXPECT().GetDocument(gomock.Any(), int64(123)).Return(invoiceDoc(123), nil)
	f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(&expense.Submission{TargetID: "2"}, nil)

	outcome, err := f.svc.ProcessDocument(context.Background(), 123, true)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, outcome.Status)
	assert.Equal(t, "2", *outcome.TargetID)
}

func TestService_ProcessDocument_Failures(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(f *fixture)
		wantKind  processing.Kind
		wantMsg   string
	}

	tests := []testCase{
		{
			name: "FetchNotFound",
			setupMock: func(f *fixture) {
				f.source.EXPECT().
					GetDocument(gomock.Any(), int64(9)).
					Return(nil, &remote.Error{Op: "get document", StatusCode: http.StatusNotFound}).
					Times(1)
			},
			wantKind: processing.KindFetch,
			wantMsg:  "get document: status 404",
		},
		{
			name: "EmptyContent",
			setupMock: func(f *fixture) {
				f.source.EXPECT().
					GetDocument(gomock.Any(), int64(9)).
					Return(&document.Document{ID: 9, Title: "scan.pdf"}, nil)
			},
			wantKind: processing.KindValidation,
			wantMsg:  "invalid content: content is empty",
		},
		{
			name: "MissingAmount",
			setupMock: func(f *fixture) {
				f.source.EXPECT().
					GetDocument(gomock.Any(), int64(9)).
					Return(&document.Document{ID: 9, Title: "note.pdf", Content: "no numbers here"}, nil)
			},
			wantKind: processing.KindValidation,
			wantMsg:  "invalid amount",
		},
		{
			name: "TargetRejects",
			setupMock: func(f *fixture) {
				f.source.EXPECT().GetDocument(gomock.Any(), int64(9)).Return(invoiceDoc(9), nil)
				f.target.EXPECT().
					CreateExpense(gomock.Any(), gomock.Any()).
					Return(nil, &remote.Error{Op: "create expense", StatusCode: http.StatusUnprocessableEntity, Body: "bad account"}).
					Times(1)
			},
			wantKind: processing.KindAPI,
			wantMsg:  "create expense: status 422: bad account",
		},
		{
			name: "TargetUnavailable",
			setupMock: func(f *fixture) {
				f.source.EXPECT().GetDocument(gomock.Any(), int64(9)).Return(invoiceDoc(9), nil)
				f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil, unavailable()).Times(3)
			},
			wantKind: processing.KindAPI,
			wantMsg:  "create expense: status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, processing.Options{})
			tt.setupMock(f)

			ctx := context.Background()

			outcome, err := f.svc.ProcessDocument(ctx, 9, false)
			require.NoError(t, err)

			assert.Equal(t, processing.StatusFailed, outcome.Status)
			assert.Nil(t, outcome.TargetID)
			assert.Contains(t, outcome.Message, tt.wantMsg)

			rec, err := f.store.GetDocument(ctx, 9)
			require.NoError(t, err)
			assert.Equal(t, processing.StatusFailed, rec.Status)
			require.NotNil(t, rec.ErrorMessage)
			assert.Contains(t, *rec.ErrorMessage, tt.wantMsg)

			pe, err := f.store.FindUnresolvedError(ctx, 9)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.Equal(t, 0, pe.RetryCount)
		})
	}
}

func TestService_ProcessDocument_TransientThenSuccess(t *testing.T) {
	f := newFixture(t, processing.Options{})

	f.source.EXPECT().GetDocument(gomock.Any(), int64(5)).Return(invoiceDoc(5), nil)

	gomock.InOrder(
		f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil, unavailable()),
		f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(&expense.Submission{TargetID: "77"}, nil),
	)

	outcome, err := f.svc.ProcessDocument(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, outcome.Status)
	assert.Equal(t, "77", *outcome.TargetID)
}

func TestService_ProcessDocument_RetryCycle(t *testing.T) {
	f := newFixture(t, processing.Options{Retry: retry.Executor{MaxAttempts: 1}})
	ctx := context.Background()

	f.source.EXPECT().GetDocument(gomock.Any(), int64(11)).Return(invoiceDoc(11), nil).Times(3)

	gomock.InOrder(
		f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil, unavailable()),
		f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil, unavailable()),
		f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(&expense.Submission{TargetID: "900"}, nil),
	)

	first, err := f.svc.ProcessDocument(ctx, 11, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusFailed, first.Status)

	pe, err := f.store.FindUnresolvedError(ctx, 11)
	require.NoError(t, err)

	second, err := f.svc.RetryError(ctx, pe.ID)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusFailed, second.Status)

	again, err := f.store.FindUnresolvedError(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, pe.ID, again.ID, "a repeated failure reuses the unresolved error row")
	assert.Equal(t, 1, again.RetryCount)

	rec, err := f.store.GetDocument(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.RetryCount)

	third, err := f.svc.ProcessDocument(ctx, 11, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, third.Status)

	_, err = f.store.FindUnresolvedError(ctx, 11)
	assert.ErrorIs(t, err, processing.ErrNotFound)

	resolved, err := f.store.GetError(ctx, pe.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.NotNil(t, resolved.ResolvedAt)

	rec, err = f.store.GetDocument(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, rec.Status)
	assert.Equal(t, 2, rec.RetryCount)
	assert.Nil(t, rec.ErrorMessage)

	_, err = f.svc.RetryError(ctx, pe.ID)
	assert.ErrorIs(t, err, processing.ErrAlreadyResolved)
}

func TestService_ProcessDocument_AppliesMapping(t *testing.T) {
	f := newFixture(t, processing.Options{})

	doc := invoiceDoc(12)
	doc.DocumentType = "Invoice"

	f.source.EXPECT().GetDocument(gomock.Any(), int64(12)).Return(doc, nil)
	f.mappings.EXPECT().
		Active(gomock.Any(), "Invoice").
		Return(&mapping.Mapping{SourceType: "Invoice", TargetType: "bill", Active: true}, nil)
	f.target.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p expense.Payload) (*expense.Submission, error) {
			assert.Equal(t, "bill", p.Kind)
			return &expense.Submission{TargetID: "3"}, nil
		})

	outcome, err := f.svc.ProcessDocument(context.Background(), 12, false)
	require.NoError(t, err)
	assert.Equal(t, "bill created", outcome.Message)
}

func TestService_ProcessDocument_StoreFailure(t *testing.T) {
	f := newFixture(t, processing.Options{})
	f.store.FailWith(errors.New("connection refused"))

	_, err := f.svc.ProcessDocument(context.Background(), 1, false)
	assert.ErrorContains(t, err, "connection refused")
}

func TestService_Skip(t *testing.T) {
	f := newFixture(t, processing.Options{})
	ctx := context.Background()

	rec, err := f.svc.Skip(ctx, 30, "duplicate upload")
	require.NoError(t, err)
	assert.Equal(t, processing.StatusSkipped, rec.Status)
	assert.Equal(t, "duplicate upload", rec.Metadata[processing.MetaSkipReason])

	outcome, err := f.svc.ProcessDocument(ctx, 30, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusSkipped, outcome.Status)

	f.store.Seed(&processing.ProcessedDocument{SourceID: 31, Status: processing.StatusCompleted})

	_, err = f.svc.Skip(ctx, 31, "")
	assert.ErrorIs(t, err, processing.ErrCompleted)
}

// cancelAwareStore rejects writes once the caller's context is gone, like a SQL driver does.
type cancelAwareStore struct {
	*processingtest.Store
}

func (s cancelAwareStore) UpdateDocument(ctx context.Context, doc *processing.ProcessedDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.Store.UpdateDocument(ctx, doc)
}

func TestService_ProcessDocument_CallerGoneAfterSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := processingtest.New()
	source := processing.NewMockSourceClient(ctrl)
	target := processing.NewMockTargetClient(ctrl)

	svc := processing.NewService(cancelAwareStore{store}, source, target, nil, processing.Options{
		Retry: retry.Executor{Sleep: func(context.Context, time.Duration) error { return nil }},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source.EXPECT().GetDocument(gomock.Any(), int64(9)).Return(invoiceDoc(9), nil)
	target.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, expense.Payload) (*expense.Submission, error) {
			cancel()
			return &expense.Submission{TargetID: "77"}, nil
		}).
		Times(1)

	outcome, err := svc.ProcessDocument(ctx, 9, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, outcome.Status)

	rec, err := store.GetDocument(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, rec.Status)
	require.NotNil(t, rec.TargetID)
	assert.Equal(t, "77", *rec.TargetID)

	again, err := svc.ProcessDocument(context.Background(), 9, false)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusSkipped, again.Status)
}

func TestService_ProcessDocument_AlreadyCancelled(t *testing.T) {
	f := newFixture(t, processing.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ProcessDocument(ctx, 8, false)
	require.ErrorIs(t, err, context.Canceled)

	_, err = f.store.GetDocument(context.Background(), 8)
	assert.ErrorIs(t, err, processing.ErrNotFound)
}

func TestService_ProcessDocument_Claim(t *testing.T) {
	type testCase struct {
		name       string
		updatedAt  time.Time
		wantStatus processing.Status
		wantRemote bool
	}

	tests := []testCase{
		{
			name:       "HeldElsewhere",
			updatedAt:  time.Now().UTC().Add(-time.Minute),
			wantStatus: processing.StatusSkipped,
		},
		{
			name:       "AbandonedClaimTakenOver",
			updatedAt:  time.Now().UTC().Add(-time.Hour),
			wantStatus: processing.StatusCompleted,
			wantRemote: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, processing.Options{})
			f.store.Seed(&processing.ProcessedDocument{
				SourceID:  5,
				Status:    processing.StatusProcessing,
				Metadata:  processing.Metadata{},
				UpdatedAt: new(tt.updatedAt),
			})

			if tt.wantRemote {
				f.source.EXPECT().GetDocument(gomock.Any(), int64(5)).Return(invoiceDoc(5), nil)
				f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(&expense.Submission{TargetID: "5"}, nil)
			}

			outcome, err := f.svc.ProcessDocument(context.Background(), 5, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, outcome.Status)

			if !tt.wantRemote {
				assert.Equal(t, "document is already being processed", outcome.Message)

				rec, err := f.store.GetDocument(context.Background(), 5)
				require.NoError(t, err)
				assert.Equal(t, processing.StatusProcessing, rec.Status)
			}
		})
	}
}

func TestService_ProcessDocument_SecondInstanceBacksOff(t *testing.T) {
	f := newFixture(t, processing.Options{})

	ctrl := gomock.NewController(t)
	other := processing.NewService(f.store, processing.NewMockSourceClient(ctrl), processing.NewMockTargetClient(ctrl), nil, processing.Options{})

	var concurrent processing.Outcome

	f.source.EXPECT().GetDocument(gomock.Any(), int64(14)).Return(invoiceDoc(14), nil)
	f.target.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, expense.Payload) (*expense.Submission, error) {
			var err error

			concurrent, err = other.ProcessDocument(context.Background(), 14, false)
			require.NoError(t, err)

			return &expense.Submission{TargetID: "140"}, nil
		}).
		Times(1)

	outcome, err := f.svc.ProcessDocument(context.Background(), 14, false)
	require.NoError(t, err)

	assert.Equal(t, processing.StatusCompleted, outcome.Status)
	assert.Equal(t, processing.StatusSkipped, concurrent.Status)
	assert.Equal(t, "document is already being processed", concurrent.Message)
}

func TestService_ProcessDocument_ConcurrentCallsSubmitOnce(t *testing.T) {
	f := newFixture(t, processing.Options{})

	release := make(chan struct{})

	f.source.EXPECT().GetDocument(gomock.Any(), int64(21)).Return(invoiceDoc(21), nil)
	f.target.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, expense.Payload) (*expense.Submission, error) {
			<-release
			return &expense.Submission{TargetID: "210"}, nil
		}).
		Times(1)

	const callers = 8

	var (
		wg       sync.WaitGroup
		outcomes = make([]processing.Outcome, callers)
		errs     = make([]error, callers)
	)

	for i := range callers {
		wg.Go(func() {
			outcomes[i], errs[i] = f.svc.ProcessDocument(context.Background(), 21, false)
		})
	}

	close(release)
	wg.Wait()

	completed := 0

	for i := range callers {
		require.NoError(t, errs[i])

		switch outcomes[i].Status {
		case processing.StatusCompleted:
			completed++
		case processing.StatusSkipped:
		default:
			t.Fatalf("caller %d: unexpected status %s", i, outcomes[i].Status)
		}
	}

	assert.GreaterOrEqual(t, completed, 1)

	rec, err := f.store.GetDocument(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, processing.StatusCompleted, rec.Status)
}

func TestService_ProcessDocument_Journal(t *testing.T) {
	type testCase struct {
		name      string
		setup     func(f *fixture)
		wantLog   []journal.Entry
		wantState processing.Status
	}

	tests := []testCase{
		{
			name: "Completed",
			setup: func(f *fixture) {
				f.source.EXPECT().GetDocument(gomock.Any(), int64(3)).Return(invoiceDoc(3), nil)
				f.target.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(&expense.Submission{TargetID: "30"}, nil)
			},
			wantLog: []journal.Entry{
				{Level: journal.LevelInfo, Component: journal.ComponentOrchestrator, Message: "processing started"},
				{Level: journal.LevelInfo, Component: journal.ComponentBigCapital, Message: "expense created"},
			},
			wantState: processing.StatusCompleted,
		},
		{
			name: "FetchFailed",
			setup: func(f *fixture) {
				f.source.EXPECT().
					GetDocument(gomock.Any(), int64(3)).
					Return(nil, &remote.Error{Op: "get document", StatusCode: http.StatusNotFound})
			},
			wantLog: []journal.Entry{
				{Level: journal.LevelInfo, Component: journal.ComponentOrchestrator, Message: "processing started"},
				{Level: journal.LevelError, Component: journal.ComponentPaperless},
			},
			wantState: processing.StatusFailed,
		},
		{
			name: "ValidationFailed",
			setup: func(f *fixture) {
				doc := invoiceDoc(3)
				doc.Content = " "
				f.source.EXPECT().GetDocument(gomock.Any(), int64(3)).Return(doc, nil)
			},
			wantLog: []journal.Entry{
				{Level: journal.LevelInfo, Component: journal.ComponentOrchestrator, Message: "processing started"},
				{Level: journal.LevelError, Component: journal.ComponentValidator},
			},
			wantState: processing.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jr := processing.NewMockJournal(ctrl)
			obs := processing.NewMockObserver(ctrl)

			var got []journal.Entry

			jr.EXPECT().
				Record(gomock.Any(), gomock.Any()).
				Do(func(_ context.Context, e journal.Entry) { got = append(got, e) }).
				AnyTimes()
			obs.EXPECT().ObserveOutcome(tt.wantState, gomock.Any()).Times(1)

			f := newFixture(t, processing.Options{Journal: jr, Observer: obs})
			tt.setup(f)

			outcome, err := f.svc.ProcessDocument(context.Background(), 3, false)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, outcome.Status)

			require.Len(t, got, len(tt.wantLog))

			for i, want := range tt.wantLog {
				require.NotNil(t, got[i].SourceID)
				assert.Equal(t, int64(3), *got[i].SourceID)
				assert.Equal(t, want.Level, got[i].Level)
				assert.Equal(t, want.Component, got[i].Component)

				if want.Message != "" {
					assert.Equal(t, want.Message, got[i].Message)
				}
			}
		})
	}
}
