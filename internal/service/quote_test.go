package service

import (
	"context"
	"fmt"
	"testing"

	"example.com/outcry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteNumbersAreNeverReused(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	var last *models.Quote
	for n := 1; n <= 3; n++ {
		quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d-%03d", job.JobID, n), quote.QuoteNumber)
		last = quote
	}

	require.NoError(t, env.svc.DeleteQuote(ctx, last.QuoteID))
	next, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d-004", job.JobID), next.QuoteNumber)

	_, err = env.svc.CreateQuote(ctx, QuoteInput{JobID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteNumberFormat(t *testing.T) {
	assert.Equal(t, "12-001", quoteNumber(12, 1))
	assert.Equal(t, "7-1000", quoteNumber(7, 1000))
}

func TestDeleteQuoteClearsApproval(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	_, err = env.svc.ApproveQuote(ctx, job.JobID, &quote.QuoteID)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteQuote(ctx, quote.QuoteID))

	reloaded, err := env.svc.GetJob(ctx, job.JobID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ApprovedQuote)
	assert.Empty(t, reloaded.Quotes)
	assert.ErrorIs(t, env.svc.DeleteQuote(ctx, quote.QuoteID), ErrNotFound)
}

func TestUpdateQuoteStoresCostsVerbatim(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID, DateCreated: mustDate(t, "2024-01-15")})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", quote.DateCreated.String())

	updated, err := env.svc.UpdateQuote(ctx, quote.QuoteID, QuoteCostInput{CostExclGST: floatPtr(100.005), CostInclGST: floatPtr(99)})
	require.NoError(t, err)
	assert.Equal(t, 100.005, *updated.CostExclGST)
	assert.Equal(t, 99.0, *updated.CostInclGST)
	assert.Equal(t, "2024-01-15", updated.DateCreated.String())

	// fields left out of the request keep their values
	updated, err = env.svc.UpdateQuote(ctx, quote.QuoteID, QuoteCostInput{CostExclGST: floatPtr(120)})
	require.NoError(t, err)
	assert.Equal(t, 120.0, *updated.CostExclGST)
	require.NotNil(t, updated.CostInclGST)
	assert.Equal(t, 99.0, *updated.CostInclGST)
}

func TestItemsAndRecalculation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	product := createProduct(t, env, "Banner", nil)
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)

	first, err := env.svc.CreateItem(ctx, ItemInput{
		QuoteID: quote.QuoteID, ProductID: product.ProductID, Quantity: 2,
		Length: floatPtr(1.2), CostExclGST: floatPtr(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "Banner", first.ProductName)
	assert.Equal(t, "", first.Reference)
	assert.Nil(t, first.Height)

	_, err = env.svc.CreateItem(ctx, ItemInput{
		QuoteID: quote.QuoteID, ProductID: product.ProductID, Quantity: 1, Reference: "Rear",
		CostExclGST: floatPtr(50), CostInclGST: floatPtr(55),
	})
	require.NoError(t, err)

	recalculated, err := env.svc.RecalculateQuote(ctx, quote.QuoteID)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, *recalculated.CostExclGST, 0.001)
	assert.InDelta(t, 165.0, *recalculated.CostInclGST, 0.001)

	detail, err := env.svc.GetQuote(ctx, quote.QuoteID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Rear", detail.Items[1].Reference)

	items, err := env.svc.ListItems(ctx, &quote.QuoteID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, env.svc.DeleteItem(ctx, first.ItemID))
	assert.ErrorIs(t, env.svc.DeleteItem(ctx, first.ItemID), ErrNotFound)
}

func TestCreateItemChecksReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)

	_, err = env.svc.CreateItem(ctx, ItemInput{QuoteID: quote.QuoteID, ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.CreateItem(ctx, ItemInput{QuoteID: 404, ProductID: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.CreateItem(ctx, ItemInput{QuoteID: quote.QuoteID, ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestItemVariableSelections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	product := createProduct(t, env, "Banner", nil)
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	item, err := env.svc.CreateItem(ctx, ItemInput{QuoteID: quote.QuoteID, ProductID: product.ProductID, Quantity: 1})
	require.NoError(t, err)

	material, err := env.svc.CreateVariable(ctx, VariableInput{Name: "Material", DataType: "select"})
	require.NoError(t, err)
	vinyl, err := env.svc.CreateOption(ctx, OptionInput{Name: "Vinyl", ProductVariableID: material.ProductVariableID})
	require.NoError(t, err)
	finish, err := env.svc.CreateVariable(ctx, VariableInput{Name: "Finish", DataType: "select"})
	require.NoError(t, err)
	gloss, err := env.svc.CreateOption(ctx, OptionInput{Name: "Gloss", ProductVariableID: finish.ProductVariableID})
	require.NoError(t, err)

	_, err = env.svc.CreateItemVariable(ctx, ItemVariableInput{
		ItemID: item.ItemID, ProductVariableID: material.ProductVariableID, VariableOptionID: &gloss.VariableOptionID,
	})
	assert.ErrorIs(t, err, ErrValidation)

	selection, err := env.svc.CreateItemVariable(ctx, ItemVariableInput{
		ItemID: item.ItemID, ProductVariableID: material.ProductVariableID, VariableOptionID: &vinyl.VariableOptionID,
	})
	require.NoError(t, err)
	require.Len(t, selection.Options, 1)
	assert.Equal(t, vinyl.VariableOptionID, selection.Options[0].VariableOptionID)

	listed, err := env.svc.ListItemVariables(ctx, &item.ItemID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].Options, 1)

	assert.ErrorIs(t, env.svc.DeleteOption(ctx, vinyl.VariableOptionID), ErrConflict)
	assert.ErrorIs(t, env.svc.DeleteVariable(ctx, material.ProductVariableID), ErrConflict)
	assert.ErrorIs(t, env.svc.DeleteProduct(ctx, product.ProductID), ErrConflict)
	require.NoError(t, env.svc.DeleteOption(ctx, gloss.VariableOptionID))
}

func TestItemDetailFallsBackToUnknownProduct(t *testing.T) {
	detail := itemDetail(models.Item{ItemID: 1, ProductID: 9})
	assert.Equal(t, models.UnknownProductName, detail.ProductName)
	assert.Nil(t, detail.Product)
}

func TestJobListingShowsQuotedItems(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	product := createProduct(t, env, "Banner", nil)
	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: job.JobID})
	require.NoError(t, err)
	_, err = env.svc.CreateItem(ctx, ItemInput{QuoteID: quote.QuoteID, ProductID: product.ProductID, Quantity: 3})
	require.NoError(t, err)

	jobs, err := env.svc.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Len(t, jobs[0].Quotes, 1)
	require.Len(t, jobs[0].Quotes[0].Items, 1)
	assert.Equal(t, "Banner", jobs[0].Quotes[0].Items[0].ProductName)
	assert.Equal(t, quote.QuoteNumber, jobs[0].Quotes[0].QuoteNumber)
}
