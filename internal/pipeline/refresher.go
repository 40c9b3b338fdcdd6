package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
	"github.com/msanchezgrice/futurenews-sub000/pkg/feeds"
)

const (
	DefaultFetchWorkers = 6
	sourceFetchTimeout  = 20 * time.Second
	fetchBatchLimit     = 50
)

// CurationQueue receives assembled story ids for the curation worker.
type CurationQueue interface {
	Push(storyID string) error
}

type SourceStore interface {
	Upsert(s *model.Source) error
	ListEnabled() ([]model.Source, error)
	RecordFetch(id string, itemCount int, fetchErr string) error
}

type ItemStore interface {
	Save(item *model.RawItem) (bool, error)
	ListUnsignaled(day string) ([]model.RawItem, error)
}

type SignalStore interface {
	Save(sig *model.Signal) error
	ListByDay(day string) ([]model.Signal, error)
}

type TopicStore interface {
	ReplaceDay(day string, topics []model.Topic) error
	ListByDay(day string) ([]model.Topic, error)
	ListEnabledStanding() ([]model.StandingTopic, error)
	UpsertEvidence(ev *model.TopicEvidence) error
	EvidenceCountByDay(day string) (map[string]int, error)
}

type EditionStore interface {
	Replace(ed *model.Edition, stories []model.Story) error
}

// Refresher coordinates one day's refresh: parallel source fetch, then
// synchronous extraction, clustering, evidence matching and assembly over the
// fully-ingested snapshot. Everything after ingestion is single-threaded on
// purpose; clustering and selection require a globally consistent snapshot.
type Refresher struct {
	sources  SourceStore
	items    ItemStore
	signals  SignalStore
	topics   TopicStore
	editions EditionStore
	clients  map[string]feeds.Client
	queue    CurationQueue
	offsets  []int
	workers  int

	mu       sync.Mutex
	inflight map[string]*refreshOp
}

type refreshOp struct {
	done chan struct{}
	err  error
}

func NewRefresher(sources SourceStore, items ItemStore, signals SignalStore, topics TopicStore, editions EditionStore, clients map[string]feeds.Client, queue CurationQueue, offsets []int, workers int) *Refresher {
	if len(offsets) == 0 {
		offsets = []int{1, 7, 30}
	}
	if workers <= 0 {
		workers = DefaultFetchWorkers
	}
	return &Refresher{
		sources:  sources,
		items:    items,
		signals:  signals,
		topics:   topics,
		editions: editions,
		clients:  clients,
		queue:    queue,
		offsets:  offsets,
		workers:  workers,
		inflight: make(map[string]*refreshOp),
	}
}

// NormalizeDay parses and reformats a day string as YYYY-MM-DD UTC.
func NormalizeDay(day string) (string, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t.UTC().Format("2006-01-02"), nil
}

// EnsureDayBuilt builds the day's signals, topics and editions if absent and
// returns the normalized day. Concurrent callers for the same day share one
// outstanding refresh instead of racing duplicate rebuilds.
func (r *Refresher) EnsureDayBuilt(ctx context.Context, day string) (string, error) {
	normalized, err := NormalizeDay(day)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	op, running := r.inflight[normalized]
	if !running {
		op = &refreshOp{done: make(chan struct{})}
		r.inflight[normalized] = op
	}
	r.mu.Unlock()

	if running {
		select {
		case <-op.done:
			return normalized, op.err
		case <-ctx.Done():
			return normalized, ctx.Err()
		}
	}

	op.err = r.refresh(ctx, normalized)

	r.mu.Lock()
	delete(r.inflight, normalized)
	r.mu.Unlock()
	close(op.done)

	return normalized, op.err
}

func (r *Refresher) refresh(ctx context.Context, day string) error {
	started := time.Now()

	sources, err := r.seedAndListSources()
	if err != nil {
		// Losing the source registry is the one fatal ingestion failure.
		return fmt.Errorf("loading source registry: %w", err)
	}

	r.fetchSources(ctx, day, sources)

	if err := r.extractSignals(day, sources); err != nil {
		return err
	}

	signals, err := r.signals.ListByDay(day)
	if err != nil {
		return fmt.Errorf("loading day signals: %w", err)
	}

	r.matchEvidence(day, signals)

	topics := ClusterDay(day, signals)
	if err := r.topics.ReplaceDay(day, topics); err != nil {
		return fmt.Errorf("replacing day topics: %w", err)
	}

	if err := r.assembleEditions(day, topics, signals); err != nil {
		return err
	}

	slog.Info("day refresh complete", "day", day, "signals", len(signals), "topics", len(topics), "elapsed", time.Since(started).String())
	return nil
}

func (r *Refresher) seedAndListSources() ([]model.Source, error) {
	for _, desc := range feeds.Defaults() {
		src := model.Source{
			ID:            desc.ID,
			Name:          desc.Name,
			Kind:          desc.Kind,
			Section:       desc.Section,
			Enabled:       true,
			FetchInterval: desc.FetchInterval,
		}
		if err := r.sources.Upsert(&src); err != nil {
			return nil, err
		}
	}
	return r.sources.ListEnabled()
}

// fetchSources pulls every enabled source through a bounded worker pool.
// Per-source failures are recorded on the source's health fields and skipped;
// they never abort the refresh.
func (r *Refresher) fetchSources(ctx context.Context, day string, sources []model.Source) {
	jobs := make(chan model.Source)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				r.fetchOne(ctx, day, src)
			}
		}()
	}

	for _, src := range sources {
		jobs <- src
	}
	close(jobs)
	wg.Wait()
}

func (r *Refresher) fetchOne(ctx context.Context, day string, src model.Source) {
	client, ok := r.clients[src.ID]
	if !ok {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, sourceFetchTimeout)
	defer cancel()

	fetched, err := client.Fetch(fetchCtx, fetchBatchLimit)
	if err != nil {
		slog.Error("error fetching source", "source", src.ID, "error", err)
		if recErr := r.sources.RecordFetch(src.ID, 0, err.Error()); recErr != nil {
			slog.Error("error recording fetch health", "source", src.ID, "error", recErr)
		}
		return
	}

	var saved, duplicated, errors int
	for _, f := range fetched {
		item := model.RawItem{
			SourceID:    src.ID,
			Day:         day,
			PublishedAt: f.PublishedAt,
			URL:         f.Link,
			Title:       f.Title,
			Summary:     f.Summary,
			Payload:     f.Payload,
			Fingerprint: Fingerprint(f.Title, f.Link, day),
		}

		success, err := r.items.Save(&item)
		if err != nil {
			slog.Error("error saving raw item", "source", src.ID, "error", err)
			errors++
			continue
		}
		if !success {
			duplicated++
			continue
		}
		saved++
	}

	if err := r.sources.RecordFetch(src.ID, saved, ""); err != nil {
		slog.Error("error recording fetch health", "source", src.ID, "error", err)
	}

	slog.Info("source fetch complete", "source", src.ID, "saved", saved, "duplicated", duplicated, "errors", errors)
}

func (r *Refresher) extractSignals(day string, sources []model.Source) error {
	items, err := r.items.ListUnsignaled(day)
	if err != nil {
		return fmt.Errorf("listing unprocessed items: %w", err)
	}

	existing, err := r.signals.ListByDay(day)
	if err != nil {
		return fmt.Errorf("loading existing signals: %w", err)
	}

	extractor := NewExtractor(sources)
	for _, sig := range extractor.Extract(day, items, existing) {
		s := sig
		if err := r.signals.Save(&s); err != nil {
			return fmt.Errorf("saving signal: %w", err)
		}
	}
	return nil
}

func (r *Refresher) matchEvidence(day string, signals []model.Signal) {
	standing, err := r.topics.ListEnabledStanding()
	if err != nil {
		slog.Error("error loading standing topics", "day", day, "error", err)
		return
	}

	for _, ev := range MatchStandingTopics(day, standing, signals) {
		link := ev
		if err := r.topics.UpsertEvidence(&link); err != nil {
			slog.Error("error saving topic evidence", "topic", link.TopicKey, "signal", link.SignalID, "error", err)
		}
	}
}

func (r *Refresher) assembleEditions(day string, topics []model.Topic, signals []model.Signal) error {
	standing, err := r.topics.ListEnabledStanding()
	if err != nil {
		return fmt.Errorf("loading standing topics: %w", err)
	}
	evidenceCounts, err := r.topics.EvidenceCountByDay(day)
	if err != nil {
		return fmt.Errorf("loading evidence counts: %w", err)
	}

	var market, econ []model.Signal
	for _, s := range signals {
		switch s.Type {
		case model.SignalMarket:
			market = append(market, s)
		case model.SignalEcon:
			econ = append(econ, s)
		}
	}

	for _, offset := range r.offsets {
		ed, stories := AssembleEdition(AssembleInput{
			Day:           day,
			Offset:        offset,
			Topics:        topics,
			Standing:      standing,
			EvidenceCount: evidenceCounts,
			MarketSignals: market,
			EconSignals:   econ,
		})

		if err := r.editions.Replace(&ed, stories); err != nil {
			return fmt.Errorf("replacing edition %s+%d: %w", day, offset, err)
		}

		if r.queue != nil {
			for _, s := range stories {
				if err := r.queue.Push(s.ID); err != nil {
					slog.Error("error queueing story for curation", "story_id", s.ID, "error", err)
				}
			}
		}

		slog.Info("edition assembled", "day", day, "offset", offset, "stories", len(stories))
	}
	return nil
}
