package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightowl/sleepsite/internal/models"
)

func testSleep(day int, hours float64, rating int) *models.Sleep {
	date := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
	return &models.Sleep{
		ID:        "sleep-" + date.Format("0102"),
		SleeperID: "user-1",
		Rating:    rating,
		Feel:      3,
		Start:     date.Add(22 * time.Hour),
		End:       date.Add(22*time.Hour + time.Duration(hours*float64(time.Hour))),
		SleepDate: date,
		Hours:     hours,
	}
}

func TestRenderScatterWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs", "sleep.png")
	charts := NewChartService(path)

	err := charts.RenderScatter([]*models.Sleep{
		testSleep(1, 8.0, 5),
		testSleep(2, 6.5, 3),
		testSleep(3, 4.0, 1),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(data) > 8)
	// PNG signature.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestRenderScatterSinglePoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleep.png")
	charts := NewChartService(path)

	err := charts.RenderScatter([]*models.Sleep{testSleep(1, 7.25, 4)})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestRenderScatterOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleep.png")
	charts := NewChartService(path)

	require.NoError(t, charts.RenderScatter([]*models.Sleep{testSleep(1, 8, 5), testSleep(2, 6, 2)}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, charts.RenderScatter([]*models.Sleep{testSleep(3, 5, 1)}))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	// Same artifact path, replaced in place with the new plot.
	assert.True(t, len(second) > 0)
	assert.NotEqual(t, first, second)
}

func TestRenderScatterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleep.png")
	charts := NewChartService(path)

	err := charts.RenderScatter(nil)
	assert.ErrorIs(t, err, ErrNoSleepData)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRatingColor(t *testing.T) {
	assert.Equal(t, dotGreen, ratingColor(5))
	assert.Equal(t, dotGreen, ratingColor(4))
	assert.Equal(t, dotYellow, ratingColor(3))
	assert.Equal(t, dotRed, ratingColor(2))
	assert.Equal(t, dotRed, ratingColor(1))
}
