// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the five triage stages as an explicit
// state machine over a typed envelope: Retrieve, Analyze,
// ExtractNotation, Score, Synthesize. Stages run strictly in order;
// a stage's unrecoverable failure terminates the run with a partial
// envelope that preserves every prior stage's output. The orchestrator
// never raises an unhandled fault; callers always get an envelope.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/arxiv-triage/internal/archive"
	"github.com/pdiddy/arxiv-triage/internal/arxiv"
	"github.com/pdiddy/arxiv-triage/internal/metrics"
	"github.com/pdiddy/arxiv-triage/internal/notation"
	"github.com/pdiddy/arxiv-triage/internal/reason"
	"github.com/pdiddy/arxiv-triage/internal/relevance"
	"github.com/pdiddy/arxiv-triage/internal/session"
	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// emptyResultMessage is the caller-facing note attached when a
// well-formed retrieval matched nothing.
const emptyResultMessage = "no papers matched the query; try broader terms or different categories"

// Retriever is the document-retrieval capability the pipeline depends
// on. The arxiv.Client satisfies it; tests supply a stand-in.
type Retriever interface {
	Search(ctx context.Context, req arxiv.Request) ([]types.Document, error)
}

// Pipeline orchestrates triage runs. Safe for concurrent use; the
// session store serializes per-session state and the retriever's
// cooldown serializes feed access.
type Pipeline struct {
	cfg       types.PipelineConfig
	retriever Retriever
	reasoner  reason.Service
	sessions  *session.Store
	archive   *archive.Store
	recorder  *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a pipeline. archive may be nil to disable run archiving;
// logger may be nil for no logging.
func New(cfg types.PipelineConfig, retriever Retriever, reasoner reason.Service, sessions *session.Store, arch *archive.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		retriever: retriever,
		reasoner:  reasoner,
		sessions:  sessions,
		archive:   arch,
		recorder:  metrics.NewRecorder(),
		logger:    logger,
		now:       time.Now,
	}
}

// UpdatePreferences replaces the interest profile stored for the
// session, creating the session if needed.
func (p *Pipeline) UpdatePreferences(sessionID string, profile types.InterestProfile) {
	p.sessions.UpdateProfile(sessionID, profile)
	p.logger.Info("preferences updated",
		zap.String("session_id", sessionID),
		zap.Strings("keywords", profile.Keywords))
}

// Session returns a snapshot of the named session.
func (p *Pipeline) Session(sessionID string) (types.SessionRecord, bool) {
	return p.sessions.Get(sessionID)
}

// Run processes one query through the pipeline and returns the result
// envelope plus a metrics snapshot. A blank sessionID gets a generated
// one. Run never returns an error: failures are tagged in the envelope.
func (p *Pipeline) Run(ctx context.Context, query, sessionID string) (*Envelope, types.MetricsSnapshot) {
	start := p.now()
	if sessionID == "" {
		sessionID = session.NewID()
	}
	profile := p.sessions.GetOrCreate(sessionID).Profile

	env := &Envelope{
		Query:     query,
		SessionID: sessionID,
		Status:    StatusComplete,
		StartedAt: start,
	}
	log := p.logger.With(zap.String("session_id", sessionID), zap.String("query", query))
	log.Info("pipeline run started")

	// Retrieve.
	var docs []types.Document
	err := p.runStage(StageRetrieve, log, func() error {
		var err error
		docs, err = p.retriever.Search(ctx, arxiv.Request{
			Query:      query,
			Categories: profile.Categories,
			MaxResults: profile.MaxResults,
		})
		return err
	})
	if err != nil {
		return p.fail(env, StageRetrieve, err, log)
	}
	env.Documents = docs

	// Emptiness is a valid result: short-circuit to a complete envelope.
	if len(docs) == 0 {
		env.Message = emptyResultMessage
		return p.finish(env, log)
	}

	// Analyze: one reasoning call per document.
	var findings []types.Finding
	err = p.runStage(StageAnalyze, log, func() error {
		findings = make([]types.Finding, 0, len(docs))
		for _, d := range docs {
			f, err := p.reasoner.Analyze(ctx, reason.AnalyzeRequest{
				PaperID:  d.ID,
				Title:    d.Title,
				Abstract: d.Abstract,
			})
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", d.ID, err)
			}
			findings = append(findings, f)
		}
		return nil
	})
	if err != nil {
		return p.fail(env, StageAnalyze, err, log)
	}
	env.Findings = findings

	// ExtractNotation: deterministic, cannot fail.
	items := make(map[string][]types.NotationItem)
	_ = p.runStage(StageExtractNotation, log, func() error {
		for _, d := range docs {
			if found := notation.Items(d.Abstract); len(found) > 0 {
				items[d.ID] = found
			}
		}
		return nil
	})
	env.Notation = items

	// Score: deterministic, cannot fail.
	var scores []types.ScoredDocument
	_ = p.runStage(StageScore, log, func() error {
		scores = relevance.Rank(docs, profile, p.cfg.Relevance, p.now())
		return nil
	})
	env.Scores = scores

	// Synthesize: one reasoning call with everything produced so far.
	var digest types.Digest
	err = p.runStage(StageSynthesize, log, func() error {
		d, err := p.reasoner.Synthesize(ctx, reason.SynthesizeRequest{
			Query:     query,
			Documents: docs,
			Findings:  findings,
			Notation:  items,
			Scores:    scores,
		})
		if err != nil {
			return err
		}
		digest = d
		return nil
	})
	if err != nil {
		return p.fail(env, StageSynthesize, err, log)
	}
	env.Digest = &digest

	return p.finish(env, log)
}

// runStage runs one stage invocation through the metrics recorder and
// logs its outcome.
func (p *Pipeline) runStage(stage string, log *zap.Logger, fn func() error) error {
	start := p.now()
	err := p.recorder.Time(stage, fn)
	d := p.now().Sub(start)
	if err != nil {
		log.Warn("stage failed", zap.String("stage", stage), zap.Duration("duration", d), zap.Error(err))
	} else {
		log.Debug("stage completed", zap.String("stage", stage), zap.Duration("duration", d))
	}
	return err
}

// fail marks the envelope partial and runs the end-of-run bookkeeping.
func (p *Pipeline) fail(env *Envelope, stage string, err error, log *zap.Logger) (*Envelope, types.MetricsSnapshot) {
	env.Status = StatusPartial
	env.FailedStage = stage
	env.FailureReason = err.Error()
	return p.finish(env, log)
}

// finish closes out the run: elapsed time, session history, archive
// record, and the metrics snapshot.
func (p *Pipeline) finish(env *Envelope, log *zap.Logger) (*Envelope, types.MetricsSnapshot) {
	now := p.now()
	env.Elapsed = now.Sub(env.StartedAt)

	if err := p.sessions.AppendHistory(env.SessionID, types.QueryHistoryEntry{
		Query:         env.Query,
		Timestamp:     now,
		DocumentCount: len(env.Documents),
		Elapsed:       env.Elapsed,
	}); err != nil {
		log.Warn("appending session history", zap.Error(err))
	}

	if p.archive != nil {
		if err := p.archive.Record(runRecord(env)); err != nil {
			log.Warn("archiving run", zap.Error(err))
		}
	}

	if env.Status == StatusComplete {
		log.Info("pipeline run complete",
			zap.Int("documents", len(env.Documents)),
			zap.Duration("elapsed", env.Elapsed))
	} else {
		log.Warn("pipeline run partial",
			zap.String("failed_stage", env.FailedStage),
			zap.String("reason", env.FailureReason),
			zap.Duration("elapsed", env.Elapsed))
	}

	return env, p.recorder.Snapshot()
}

// runRecord projects an envelope onto the archive schema.
func runRecord(env *Envelope) archive.RunRecord {
	titles := make(map[string]string, len(env.Documents))
	for _, d := range env.Documents {
		titles[d.ID] = d.Title
	}
	papers := make([]archive.RunPaper, 0, len(env.Scores))
	for _, sc := range env.Scores {
		papers = append(papers, archive.RunPaper{
			ID:    sc.PaperID,
			Title: titles[sc.PaperID],
			Score: sc.Score,
			Rank:  sc.Rank,
		})
	}
	return archive.RunRecord{
		SessionID:     env.SessionID,
		Query:         env.Query,
		Status:        string(env.Status),
		DocumentCount: len(env.Documents),
		Elapsed:       env.Elapsed,
		CreatedAt:     env.StartedAt,
		Papers:        papers,
	}
}
