package cache

import (
	"testing"

	"github.com/chainsentinel/sentinel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNextWatermarkTakesMaxBlockSeen(t *testing.T) {
	rows := []model.Transaction{{BlockNumber: 10}, {BlockNumber: 55}, {BlockNumber: 3}}
	require.EqualValues(t, 55, NextWatermark(0, rows))
}

func TestNextWatermarkNeverRegresses(t *testing.T) {
	rows := []model.Transaction{{BlockNumber: 5}}
	require.EqualValues(t, 100, NextWatermark(100, rows))
}

func TestPlanFetchInitialWhenWatermarkZero(t *testing.T) {
	plan := PlanFetch(0, 1000)
	require.True(t, plan.Initial)
	require.True(t, plan.Descending)
	require.EqualValues(t, 1000, plan.PageSize)
}

func TestPlanFetchIncrementalStartsAfterWatermark(t *testing.T) {
	plan := PlanFetch(500, 1000)
	require.False(t, plan.Initial)
	require.False(t, plan.Descending)
	require.EqualValues(t, 501, plan.StartBlock)
}
