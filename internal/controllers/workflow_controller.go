package controllers

import (
	"github.com/frontand-tech/frontand/internal/workflows"
	"github.com/frontand-tech/frontand/pkg/clients/coreloop"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// WorkflowController runs workflows end to end: CSV in, processed rows out.
type WorkflowController struct {
	runner *workflows.Runner
}

type WorkflowControllerDependencies struct {
	Runner *workflows.Runner
}

func NewWorkflowController(deps WorkflowControllerDependencies) *WorkflowController {
	return &WorkflowController{
		runner: deps.Runner,
	}
}

type runWorkflowRequest struct {
	Mode               string `json:"mode,omitempty"`
	CSV                string `json:"csv"`
	Prompt             string `json:"prompt,omitempty"`
	CompanyURL         string `json:"company_url,omitempty"`
	KeywordColumn      string `json:"keyword_column,omitempty"`
	BatchSize          int    `json:"batch_size,omitempty"`
	EnableGoogleSearch bool   `json:"enable_google_search,omitempty"`
	TestMode           bool   `json:"test_mode,omitempty"`
}

func (c *WorkflowController) Run(ctx fiber.Ctx) error {
	var req runWorkflowRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.CSV == "" {
		return fiber.NewError(fiber.StatusBadRequest, "CSV content is required")
	}

	workflowID := ctx.Params("workflowID")

	log.Info().Msgf("Running workflow %s in mode %s", workflowID, req.Mode)

	result, err := c.runner.Run(ctx.RequestCtx(), workflows.RunParams{
		WorkflowID:         workflowID,
		UserID:             userID(ctx),
		Mode:               coreloop.ProcessMode(req.Mode),
		CSV:                []byte(req.CSV),
		Prompt:             req.Prompt,
		CompanyURL:         req.CompanyURL,
		KeywordColumn:      req.KeywordColumn,
		BatchSize:          req.BatchSize,
		EnableGoogleSearch: req.EnableGoogleSearch,
		TestMode:           req.TestMode,
	})
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(result)
}
