package services

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nightowl/sleepsite/internal/models"
)

var ErrNoSleepData = errors.New("no sleep data to chart")

var (
	dotGreen  = drawing.Color{R: 0, G: 160, B: 0, A: 255}
	dotYellow = drawing.Color{R: 240, G: 200, B: 0, A: 255}
	dotRed    = drawing.Color{R: 200, G: 0, B: 0, A: 255}
)

// ChartService renders the sleep scatter to a fixed file path. The path is
// a single shared artifact with no per-user isolation: concurrent renders
// race and the file keeps whichever finished last.
type ChartService struct {
	path string
}

func NewChartService(path string) *ChartService {
	os.MkdirAll(filepath.Dir(path), 0755)
	return &ChartService{path: path}
}

// Path is where the rendered image lands, relative to the static dir.
func (s *ChartService) Path() string {
	return s.path
}

func ratingColor(rating int) drawing.Color {
	switch {
	case rating >= 4:
		return dotGreen
	case rating == 3:
		return dotYellow
	default:
		return dotRed
	}
}

// RenderScatter plots start date against hours slept, colored by rating,
// and overwrites any prior artifact at the fixed path.
func (s *ChartService) RenderScatter(sleeps []*models.Sleep) error {
	if len(sleeps) == 0 {
		return ErrNoSleepData
	}

	xs := make([]float64, len(sleeps))
	ys := make([]float64, len(sleeps))
	colors := make([]drawing.Color, len(sleeps))
	for i, sl := range sleeps {
		xs[i] = chart.TimeToFloat64(sl.SleepDate)
		ys[i] = sl.Hours
		colors[i] = ratingColor(sl.Rating)
	}

	series := chart.ContinuousSeries{
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    6,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return colors[index]
			},
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          paddedRange(xs, 24*3600),
		},
		YAxis: chart.YAxis{
			Name:  "hours",
			Range: paddedRange(ys, 1),
		},
		Series: []chart.Series{series},
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}

// paddedRange widens the axis so a chart with a single point still has a
// non-degenerate domain.
func paddedRange(values []float64, pad float64) *chart.ContinuousRange {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}
