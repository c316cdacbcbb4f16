package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCascade(t *testing.T) {
	var ran []string
	step := func(name string, err error) cascadeStep {
		return cascadeStep{name: name, run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	t.Run("all steps", func(t *testing.T) {
		ran = nil
		err := runCascade(context.Background(), []cascadeStep{step("applications", nil), step("saved_jobs", nil), step("candidate", nil)})
		require.NoError(t, err)
		assert.Equal(t, []string{"applications", "saved_jobs", "candidate"}, ran)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		ran = nil
		boom := errors.New("boom")
		err := runCascade(context.Background(), []cascadeStep{step("applications", nil), step("saved_jobs", boom), step("candidate", nil)})

		var cascadeErr *domain.CascadeError
		require.ErrorAs(t, err, &cascadeErr)
		assert.Equal(t, "saved_jobs", cascadeErr.Step)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"applications", "saved_jobs"}, ran)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ran = nil
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := runCascade(ctx, []cascadeStep{step("applications", nil)})
		var cascadeErr *domain.CascadeError
		require.ErrorAs(t, err, &cascadeErr)
		assert.Equal(t, "applications", cascadeErr.Step)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, ran)
	})
}
