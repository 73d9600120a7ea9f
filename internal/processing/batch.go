package processing

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/paperbridge/internal/retry"
)

const batchCancelled = "batch cancelled"

// BatchProcess processes ids independently and returns one Outcome per id, in input order.
// Ids are taken in chunks of batchSize (the configured size when <= 0) with up to Workers in flight.
// Cancelling ctx stops new ids from starting; ids already started run to completion.
// The caller must not pass the same id twice when Workers > 1.
func (s *Service) BatchProcess(ctx context.Context, ids []int64, batchSize int) []Outcome {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	outcomes := make([]Outcome, len(ids))
	work := context.WithoutCancel(ctx)

	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		g := new(errgroup.Group)
		g.SetLimit(s.workers)

		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				outcomes[i] = Outcome{Status: StatusPending, SourceID: ids[i], Message: batchCancelled}
				continue
			}

			g.Go(func() error {
				outcomes[i] = s.processOne(work, ids[i])
				return nil
			})
		}

		_ = g.Wait()

		slog.Debug("batch chunk done", "from", start, "to", end, "total", len(ids))
	}

	return outcomes
}

func (s *Service) processOne(ctx context.Context, id int64) Outcome {
	outcome, err := s.ProcessDocument(ctx, id, false)
	if err != nil {
		slog.Error("processing document", "document_id", id, "error", err)

		return Outcome{Status: StatusFailed, SourceID: id, Message: err.Error()}
	}

	return outcome
}

// minListPageSize keeps small limits from paging through the source a handful of ids at a time.
const minListPageSize = 100

// ProcessPending walks the source oldest first and processes the first limit documents that
// still need work. Completed and skipped documents are passed over, as are failed ones that
// have used up their automatic retries; they stay reachable through ProcessDocument and RetryError.
func (s *Service) ProcessPending(ctx context.Context, limit, batchSize int) ([]Outcome, error) {
	if limit <= 0 {
		return nil, nil
	}

	pending, scanned, err := s.collectPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	slog.Info("processing pending documents", "scanned", scanned, "pending", len(pending))

	if len(pending) == 0 {
		return nil, nil
	}

	return s.BatchProcess(ctx, pending, batchSize), nil
}

type listing struct {
	ids  []int64
	more bool
}

func (s *Service) collectPending(ctx context.Context, limit int) ([]int64, int, error) {
	pageSize := max(limit, minListPageSize)
	seen := make(map[int64]struct{})
	pending := make([]int64, 0, limit)

	for page := 1; len(pending) < limit; page++ {
		l, err := retry.Do(ctx, s.retry, func(ctx context.Context) (listing, error) {
			ids, more, err := s.source.ListDocuments(ctx, page, pageSize)
			return listing{ids: ids, more: more}, err
		})
		if err != nil {
			return nil, len(seen), fmt.Errorf("listing source documents: %w", err)
		}

		fresh := make([]int64, 0, len(l.ids))

		for _, id := range l.ids {
			if _, dup := seen[id]; dup {
				continue
			}

			seen[id] = struct{}{}
			fresh = append(fresh, id)
		}

		if len(fresh) > 0 {
			states, err := s.repo.DocumentStates(ctx, fresh)
			if err != nil {
				return nil, len(seen), fmt.Errorf("loading document states: %w", err)
			}

			for _, id := range fresh {
				if !s.eligible(states[id]) {
					continue
				}

				pending = append(pending, id)
				if len(pending) == limit {
					break
				}
			}
		}

		if !l.more || len(l.ids) == 0 {
			break
		}
	}

	return pending, len(seen), nil
}

// eligible reports whether the poller should pick up a document in state st.
// Untracked documents have the zero state.
func (s *Service) eligible(st DocumentState) bool {
	if st.Status.Done() {
		return false
	}

	return st.Status != StatusFailed || st.RetryCount < s.maxRetries
}
