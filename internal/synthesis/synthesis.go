// Package synthesis turns per-module analysis output into the consolidated
// issue list and executive summary of a prospect report.
//
// A run builds the screenshot references once, then runs the deduplication
// and executive-summary stages concurrently. Each stage fails independently:
// deduplication degrades to a deterministic formatter, the summary degrades
// to nil. Run never returns an error; failures are listed in
// SynthesisResult.Errors and reflected in the run status.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/belivan/MaxantAgency-sub013/internal/config"
	"github.com/belivan/MaxantAgency-sub013/internal/issues"
	"github.com/belivan/MaxantAgency-sub013/internal/llm"
	"github.com/belivan/MaxantAgency-sub013/internal/logging"
	"github.com/belivan/MaxantAgency-sub013/internal/prompt"
	"github.com/belivan/MaxantAgency-sub013/internal/schema"
	"github.com/belivan/MaxantAgency-sub013/internal/screenshot"
)

const defaultIssuesPerModule = 5

// LeadPriority carries the sales-priority fields produced by grading.
type LeadPriority struct {
	PriorityTier     schema.PriorityTier     `json:"priorityTier,omitempty"`
	BudgetLikelihood schema.BudgetLikelihood `json:"budgetLikelihood,omitempty"`
	LeadScore        *float64                `json:"leadScore,omitempty"`
}

// Params is the immutable input of one run.
type Params struct {
	CompanyName  string                       `json:"companyName"`
	Industry     string                       `json:"industry,omitempty"`
	URL          string                       `json:"url,omitempty"`
	Grade        string                       `json:"grade,omitempty"`
	OverallScore float64                      `json:"overallScore,omitempty"`
	Scores       schema.DimensionScores       `json:"scores,omitempty"`
	LeadPriority LeadPriority                 `json:"leadPriority"`
	Issues       map[string][]schema.RawIssue `json:"issues"`
	QuickWins    []string                     `json:"quickWins,omitempty"`
	Pages        []schema.CrawledPage         `json:"pages"`
}

// Orchestrator runs synthesis. It holds no per-run state and is safe for
// concurrent use.
type Orchestrator struct {
	completer llm.Completer
	prompts   prompt.Loader
	perModule int
	logger    *slog.Logger
}

// New returns an Orchestrator. A non-positive FallbackIssuesPerModule
// selects the default of 5.
func New(completer llm.Completer, prompts prompt.Loader, cfg config.SynthesisConfig, logger *slog.Logger) *Orchestrator {
	perModule := cfg.FallbackIssuesPerModule
	if perModule <= 0 {
		perModule = defaultIssuesPerModule
	}
	return &Orchestrator{
		completer: completer,
		prompts:   prompts,
		perModule: perModule,
		logger:    logging.OrDiscard(logger).With("component", "synthesis"),
	}
}

// Run executes one synthesis run. Stages are not cancelled when ctx is;
// only the per-call timeout of the completer bounds them.
func (o *Orchestrator) Run(ctx context.Context, p Params) *schema.SynthesisResult {
	st := newRunState()
	res := &schema.SynthesisResult{
		RunID:       uuid.NewString(),
		CompanyName: p.CompanyName,
		Errors:      []schema.StageError{},
	}
	log := o.logger.With("run_id", res.RunID, "company", p.CompanyName)

	refs := screenshot.BuildReferences(p.Pages)
	res.ScreenshotReferences = refs

	st.transition(schema.RunRunning)
	log.Info("synthesis started",
		"pages", len(p.Pages),
		"screenshots", len(refs),
		"raw_issues", issues.Count(p.Issues),
	)

	stageCtx := context.WithoutCancel(ctx)
	var (
		dedup   dedupOutcome
		summary summaryOutcome
		g       errgroup.Group
	)
	g.Go(func() error {
		dedup = o.runDeduplication(stageCtx, p, refs, log)
		return nil
	})
	g.Go(func() error {
		summary = o.runExecutiveSummary(stageCtx, p, refs, log)
		return nil
	})
	_ = g.Wait()

	res.ConsolidatedIssues = dedup.issues
	res.MergeLog = dedup.mergeLog
	res.Statistics = dedup.stats
	res.StageMetadata.Deduplication = dedup.info
	res.ExecutiveSummary = summary.summary
	res.SummaryMetadata = summary.metadata
	res.StageMetadata.ExecutiveSummary = summary.info

	for _, err := range []*schema.StageError{dedup.err, summary.err} {
		if err != nil {
			res.Errors = append(res.Errors, *err)
		}
	}
	if len(res.Errors) == 0 {
		st.transition(schema.RunComplete)
	} else {
		st.transition(schema.RunPartial)
	}
	res.Status = st.status

	log.Info("synthesis finished",
		"status", res.Status,
		"issues", len(res.ConsolidatedIssues),
		"summary", res.ExecutiveSummary != nil,
		"errors", len(res.Errors),
	)
	return res
}

// runState guards the run lifecycle PENDING → RUNNING → {PARTIAL, COMPLETE}.
type runState struct {
	status schema.RunStatus
}

var transitions = map[schema.RunStatus][]schema.RunStatus{
	schema.RunPending: {schema.RunRunning},
	schema.RunRunning: {schema.RunPartial, schema.RunComplete},
}

func newRunState() *runState {
	return &runState{status: schema.RunPending}
}

// transition panics on an illegal move; that is a bug in this package.
func (s *runState) transition(to schema.RunStatus) {
	for _, next := range transitions[s.status] {
		if next == to {
			s.status = to
			return
		}
	}
	panic(fmt.Sprintf("synthesis: illegal run transition %s -> %s", s.status, to))
}

// protect converts a panic in fn into an error.
func protect(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", stage, r)
		}
	}()
	return fn()
}

func stageError(stage string, err error) *schema.StageError {
	return &schema.StageError{Stage: stage, Message: err.Error()}
}

func since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
