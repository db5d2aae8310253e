package service

import (
	"context"
	"testing"

	"example.com/outcry/internal/messaging"
	"example.com/outcry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskAppendsToStage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	orders := map[string]int{}
	for _, in := range []TaskInput{
		{TaskName: "Artwork", JobID: job.JobID, StageID: models.StagePreProduction},
		{TaskName: "Proof", JobID: job.JobID, StageID: models.StagePreProduction},
		{TaskName: "Print", JobID: job.JobID, StageID: models.StageProduction},
	} {
		task, err := env.svc.CreateTask(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusIncomplete, task.StatusID)
		assert.Equal(t, "Not Completed", task.StatusLabel)
		orders[task.TaskName] = task.TaskOrder
	}
	assert.Equal(t, map[string]int{"Artwork": 1, "Proof": 2, "Print": 1}, orders)

	stage := models.StagePreProduction
	tasks, err := env.svc.ListTasks(ctx, job.JobID, &stage)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	all, err := env.svc.ListTasks(ctx, job.JobID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = env.svc.CreateTask(ctx, TaskInput{TaskName: "Ghost", JobID: job.JobID, StageID: 99})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.svc.ListTasks(ctx, 404, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetTaskCompletion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))
	task, err := env.svc.CreateTask(ctx, TaskInput{TaskName: "Print", JobID: job.JobID, StageID: models.StageProduction})
	require.NoError(t, err)

	done, err := env.svc.SetTaskCompletion(ctx, task.TaskID, true)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusComplete, done.StatusID)
	assert.Equal(t, "Completed", done.StatusLabel)
	require.NotNil(t, done.TimeCompleted)
	assert.Contains(t, env.publishedTypes(), messaging.EventTaskCompleted)

	reopened, err := env.svc.SetTaskCompletion(ctx, task.TaskID, false)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusIncomplete, reopened.StatusID)
	assert.Nil(t, reopened.TimeCompleted)

	_, err = env.svc.SetTaskCompletion(ctx, 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskMovesToEndOfStage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	_, err := env.svc.CreateTask(ctx, TaskInput{TaskName: "Print", JobID: job.JobID, StageID: models.StageProduction})
	require.NoError(t, err)
	task, err := env.svc.CreateTask(ctx, TaskInput{TaskName: "Artwork", JobID: job.JobID, StageID: models.StagePreProduction})
	require.NoError(t, err)

	name := "Artwork final"
	stage := models.StageProduction
	moved, err := env.svc.UpdateTask(ctx, task.TaskID, TaskUpdateInput{TaskName: &name, StageID: &stage})
	require.NoError(t, err)
	assert.Equal(t, "Artwork final", moved.TaskName)
	assert.Equal(t, models.StageProduction, moved.StageID)
	assert.Equal(t, 2, moved.TaskOrder)

	order := 7
	reordered, err := env.svc.UpdateTask(ctx, task.TaskID, TaskUpdateInput{TaskOrder: &order})
	require.NoError(t, err)
	assert.Equal(t, 7, reordered.TaskOrder)

	zero := 0
	_, err = env.svc.UpdateTask(ctx, task.TaskID, TaskUpdateInput{TaskOrder: &zero})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.svc.DeleteTask(ctx, task.TaskID))
	assert.ErrorIs(t, env.svc.DeleteTask(ctx, task.TaskID), ErrNotFound)
}

func TestTaskItemMustBelongToJob(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	f := seedParties(t, env)
	job := createJob(t, env, f)
	other := createJob(t, env, f)
	product := createProduct(t, env, "Banner", nil)

	quote, err := env.svc.CreateQuote(ctx, QuoteInput{JobID: other.JobID})
	require.NoError(t, err)
	item, err := env.svc.CreateItem(ctx, ItemInput{QuoteID: quote.QuoteID, ProductID: product.ProductID, Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.CreateTask(ctx, TaskInput{TaskName: "Print", JobID: job.JobID, ItemID: &item.ItemID, StageID: models.StageProduction})
	assert.ErrorIs(t, err, ErrConflict)

	task, err := env.svc.CreateTask(ctx, TaskInput{TaskName: "Print", JobID: other.JobID, ItemID: &item.ItemID, StageID: models.StageProduction})
	require.NoError(t, err)
	require.NotNil(t, task.ItemID)
	assert.Equal(t, item.ItemID, *task.ItemID)
}

func TestStages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	job := createJob(t, env, seedParties(t, env))

	stages, err := env.svc.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "Pre-Production", stages[0].Stage)

	install, err := env.svc.CreateStage(ctx, StageInput{Stage: "Install", StageOrder: 4})
	require.NoError(t, err)
	renamed, err := env.svc.UpdateStage(ctx, install.StageID, StageInput{Stage: "Installation", StageOrder: 0})
	require.NoError(t, err)
	assert.Equal(t, "Installation", renamed.Stage)

	stages, err = env.svc.ListStages(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 4)
	assert.Equal(t, "Installation", stages[0].Stage)

	_, err = env.svc.CreateTask(ctx, TaskInput{TaskName: "Fit", JobID: job.JobID, StageID: install.StageID})
	require.NoError(t, err)
	assert.ErrorIs(t, env.svc.DeleteStage(ctx, install.StageID), ErrConflict)

	unused, err := env.svc.CreateStage(ctx, StageInput{Stage: "Archive", StageOrder: 9})
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteStage(ctx, unused.StageID))

	statuses, err := env.svc.ListTaskStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)
}
