package controllers

import (
	"strconv"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/gofiber/fiber/v3"
)

// MonetizationController exposes pricing, execution economics, earnings,
// payouts and analytics over HTTP.
type MonetizationController struct {
	monetizationManager domain.MonetizationManager
}

type MonetizationControllerDependencies struct {
	MonetizationManager domain.MonetizationManager
}

func NewMonetizationController(deps MonetizationControllerDependencies) *MonetizationController {
	return &MonetizationController{
		monetizationManager: deps.MonetizationManager,
	}
}

func (c *MonetizationController) ConfigurePricing(ctx fiber.Ctx) error {
	var req domain.ConfigurePricingParams

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.WorkflowID = ctx.Params("workflowID")

	pricing, err := c.monetizationManager.ConfigureWorkflowPricing(ctx.RequestCtx(), req)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(pricing)
}

func (c *MonetizationController) GetPricing(ctx fiber.Ctx) error {
	pricing, err := c.monetizationManager.GetWorkflowPricing(ctx.RequestCtx(), ctx.Params("workflowID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(pricing)
}

func (c *MonetizationController) CalculateCost(ctx fiber.Ctx) error {
	units, err := strconv.Atoi(ctx.Query("units", "1"))
	if err != nil || units < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid units parameter")
	}

	cost, err := c.monetizationManager.CalculateExecutionCost(ctx.RequestCtx(), ctx.Params("workflowID"), units)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(cost)
}

func (c *MonetizationController) ExecuteWorkflow(ctx fiber.Ctx) error {
	var req domain.ExecuteWorkflowParams

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.WorkflowID = ctx.Params("workflowID")
	if req.UserID == "" {
		req.UserID = userID(ctx)
	}

	execution, err := c.monetizationManager.ExecuteWorkflow(ctx.RequestCtx(), req)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(execution)
}

func (c *MonetizationController) GetAnalytics(ctx fiber.Ctx) error {
	analytics, err := c.monetizationManager.GetWorkflowAnalytics(ctx.RequestCtx(), ctx.Params("workflowID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(analytics)
}

func (c *MonetizationController) GetCreatorEarnings(ctx fiber.Ctx) error {
	earnings, err := c.monetizationManager.GetCreatorEarnings(ctx.RequestCtx(), ctx.Params("creatorID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"earnings": earnings})
}

func (c *MonetizationController) GetCreatorTotals(ctx fiber.Ctx) error {
	totals, err := c.monetizationManager.GetCreatorTotalEarnings(ctx.RequestCtx(), ctx.Params("creatorID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(totals)
}

func (c *MonetizationController) RequestPayout(ctx fiber.Ctx) error {
	var req domain.ProcessPayoutParams

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	req.CreatorID = ctx.Params("creatorID")

	payout, err := c.monetizationManager.ProcessCreatorPayout(ctx.RequestCtx(), req)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(payout)
}

func (c *MonetizationController) GetPayout(ctx fiber.Ctx) error {
	payout, err := c.monetizationManager.GetPayout(ctx.RequestCtx(), ctx.Params("payoutID"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(payout)
}
