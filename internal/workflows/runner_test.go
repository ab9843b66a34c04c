package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/frontand-tech/frontand/internal/managers"
	"github.com/frontand-tech/frontand/internal/storage/inmemory"
	"github.com/frontand-tech/frontand/pkg/clients/coreloop"
	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	requests []*coreloop.ProcessRequest
	response *coreloop.ProcessResponse
	err      error
}

func (f *fakeBackend) Health(ctx context.Context) (*coreloop.HealthResponse, error) {
	return &coreloop.HealthResponse{Status: "healthy"}, nil
}

func (f *fakeBackend) ProcessRows(ctx context.Context, req *coreloop.ProcessRequest) (*coreloop.ProcessResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type approvingProcessor struct{}

func (approvingProcessor) Charge(ctx context.Context, p domain.ChargeParams) (domain.ChargeResult, error) {
	return domain.ChargeResult{PaymentID: "pay_ok", Succeeded: true}, nil
}

type decliningProcessor struct{}

func (decliningProcessor) Charge(ctx context.Context, p domain.ChargeParams) (domain.ChargeResult, error) {
	return domain.ChargeResult{PaymentID: "pay_declined", Succeeded: false}, nil
}

func newTestRunner(t *testing.T, processor domain.PaymentProcessor, backend *fakeBackend, pricing domain.ConfigurePricingParams) *Runner {
	t.Helper()

	manager := managers.NewMonetizationManager(managers.MonetizationManagerDependencies{
		Store:    inmemory.NewMonetizationStore(),
		Payments: processor,
		Config:   managers.DefaultMonetizationConfig(),
	})

	_, err := manager.ConfigureWorkflowPricing(context.Background(), pricing)
	require.NoError(t, err)

	return NewRunner(RunnerDependencies{
		MonetizationManager: manager,
		BackendClient:       backend,
	})
}

func freePricing() domain.ConfigurePricingParams {
	return domain.ConfigurePricingParams{WorkflowID: "wf-1", CreatorID: "creator-1"}
}

func paidPricing() domain.ConfigurePricingParams {
	return domain.ConfigurePricingParams{
		WorkflowID:   "wf-1",
		CreatorID:    "creator-1",
		Model:        domain.PricingModelPayPerUse,
		PerUnitPrice: 1.0,
	}
}

func TestRunFreestyle(t *testing.T) {
	backend := &fakeBackend{
		response: &coreloop.ProcessResponse{
			Success: true,
			Results: []map[string]any{{"row": "0"}, {"row": "1"}},
		},
	}
	runner := newTestRunner(t, approvingProcessor{}, backend, freePricing())

	result, err := runner.Run(context.Background(), RunParams{
		WorkflowID: "wf-1",
		UserID:     "user-1",
		CSV:        []byte("name,url\nAcme,acme.com\nGlobex,globex.com\n"),
		Prompt:     "Summarize",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionStatusCompleted, result.Execution.Status)
	assert.Equal(t, 2, result.Execution.UnitsProcessed, "units metered from row count")
	assert.Len(t, result.Results, 2)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, coreloop.ModeFreestyle, backend.requests[0].Mode, "empty mode defaults to freestyle")
}

func TestRunKeywordKombatMetersKeywords(t *testing.T) {
	backend := &fakeBackend{response: &coreloop.ProcessResponse{Results: []map[string]any{}}}
	runner := newTestRunner(t, approvingProcessor{}, backend, freePricing())

	result, err := runner.Run(context.Background(), RunParams{
		WorkflowID: "wf-1",
		UserID:     "user-1",
		Mode:       coreloop.ModeKeywordKombat,
		CSV:        []byte("keyword\nai tools\n\nworkflow automation\n"),
		CompanyURL: "https://frontand.tech",
	})
	require.NoError(t, err)

	// The blank row is dropped, so only two keywords are metered.
	assert.Equal(t, 2, result.Execution.UnitsProcessed)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, []string{"ai tools", "workflow automation"}, backend.requests[0].Keywords)
}

func TestRunUnpaidExecutionIsNotDispatched(t *testing.T) {
	backend := &fakeBackend{response: &coreloop.ProcessResponse{}}
	runner := newTestRunner(t, decliningProcessor{}, backend, paidPricing())

	result, err := runner.Run(context.Background(), RunParams{
		WorkflowID: "wf-1",
		UserID:     "user-1",
		CSV:        []byte("name\nAcme\n"),
		Prompt:     "Summarize",
	})
	require.NoError(t, err)

	assert.False(t, result.Execution.Paid)
	assert.Equal(t, domain.ExecutionStatusFailed, result.Execution.Status)
	assert.Empty(t, result.Results)
	assert.Empty(t, backend.requests, "unpaid executions never reach the backend")
}

func TestRunBackendFailureFinalizesExecution(t *testing.T) {
	backend := &fakeBackend{err: errors.New("modal timeout")}
	runner := newTestRunner(t, approvingProcessor{}, backend, freePricing())

	result, err := runner.Run(context.Background(), RunParams{
		WorkflowID: "wf-1",
		UserID:     "user-1",
		CSV:        []byte("name\nAcme\n"),
		Prompt:     "Summarize",
	})
	require.Error(t, err)

	assert.Equal(t, domain.ExecutionStatusFailed, result.Execution.Status)
}

func TestRunValidation(t *testing.T) {
	backend := &fakeBackend{response: &coreloop.ProcessResponse{}}
	runner := newTestRunner(t, approvingProcessor{}, backend, freePricing())

	tests := []struct {
		name   string
		params RunParams
	}{
		{
			name: "empty csv",
			params: RunParams{
				WorkflowID: "wf-1", UserID: "user-1",
				CSV: []byte(""), Prompt: "Summarize",
			},
		},
		{
			name: "missing prompt for freestyle",
			params: RunParams{
				WorkflowID: "wf-1", UserID: "user-1",
				CSV: []byte("name\nAcme\n"),
			},
		},
		{
			name: "unknown mode",
			params: RunParams{
				WorkflowID: "wf-1", UserID: "user-1",
				Mode: "turbo", CSV: []byte("name\nAcme\n"), Prompt: "Summarize",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), tt.params)
			assert.Error(t, err)
			assert.Empty(t, backend.requests)
		})
	}
}
