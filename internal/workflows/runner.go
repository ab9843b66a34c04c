package workflows

import (
	"context"
	"fmt"

	"github.com/frontand-tech/frontand/internal/rows"
	"github.com/frontand-tech/frontand/pkg/clients/coreloop"
	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/rs/zerolog/log"
)

// Runner is the page-level orchestration of one workflow run: adapt the
// uploaded CSV into a backend payload, meter and charge the execution,
// dispatch to the row-processing backend and finalize the record.
type Runner struct {
	monetization domain.MonetizationManager
	backend      coreloop.ClientInterface
}

type RunnerDependencies struct {
	MonetizationManager domain.MonetizationManager
	BackendClient       coreloop.ClientInterface
}

func NewRunner(deps RunnerDependencies) *Runner {
	return &Runner{
		monetization: deps.MonetizationManager,
		backend:      deps.BackendClient,
	}
}

type RunParams struct {
	WorkflowID string
	UserID     string
	Mode       coreloop.ProcessMode
	CSV        []byte

	Prompt             string
	CompanyURL         string
	KeywordColumn      string
	BatchSize          int
	EnableGoogleSearch bool
	TestMode           bool
}

type RunResult struct {
	Execution domain.WorkflowExecution `json:"execution"`
	Results   []map[string]any         `json:"results,omitempty"`
}

// Run executes a workflow end to end. Unpaid executions are recorded but
// never dispatched to the backend.
func (r *Runner) Run(ctx context.Context, p RunParams) (RunResult, error) {
	table, err := rows.ParseCSV(p.CSV)
	if err != nil {
		return RunResult{}, err
	}

	request, err := r.buildRequest(table, p)
	if err != nil {
		return RunResult{}, err
	}

	units := table.RowCount()
	if p.Mode == coreloop.ModeKeywordKombat {
		units = len(request.Keywords)
	}

	execution, err := r.monetization.ExecuteWorkflow(ctx, domain.ExecuteWorkflowParams{
		WorkflowID:     p.WorkflowID,
		UserID:         p.UserID,
		UnitsProcessed: units,
	})
	if err != nil {
		return RunResult{}, err
	}

	if !execution.Paid {
		// Payment was declined; the caller inspects the execution record
		// and decides whether to retry.
		execution, err = r.monetization.FinalizeExecution(ctx, execution.ID, domain.ExecutionStatusFailed)
		if err != nil {
			return RunResult{}, err
		}

		return RunResult{Execution: execution}, nil
	}

	response, err := r.backend.ProcessRows(ctx, request)
	if err != nil {
		log.Error().Err(err).Msgf("Backend processing failed for workflow %s", p.WorkflowID)

		if execution, finalizeErr := r.monetization.FinalizeExecution(ctx, execution.ID, domain.ExecutionStatusFailed); finalizeErr == nil {
			return RunResult{Execution: execution}, err
		}

		return RunResult{Execution: execution}, err
	}

	execution, err = r.monetization.FinalizeExecution(ctx, execution.ID, domain.ExecutionStatusCompleted)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{
		Execution: execution,
		Results:   response.Results,
	}, nil
}

func (r *Runner) buildRequest(table rows.Table, p RunParams) (*coreloop.ProcessRequest, error) {
	switch p.Mode {
	case coreloop.ModeKeywordKombat:
		return rows.AdaptKeywordKombat(table, rows.KeywordKombatParams{
			CompanyURL:         p.CompanyURL,
			KeywordColumn:      p.KeywordColumn,
			EnableGoogleSearch: p.EnableGoogleSearch,
			TestMode:           p.TestMode,
		})
	case coreloop.ModeFreestyle, "":
		return rows.AdaptFreestyle(table, rows.FreestyleParams{
			Prompt:             p.Prompt,
			BatchSize:          p.BatchSize,
			EnableGoogleSearch: p.EnableGoogleSearch,
			TestMode:           p.TestMode,
		})
	default:
		return nil, fmt.Errorf("unknown mode %q", p.Mode)
	}
}
