package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestTemperatureBars_NoData(t *testing.T) {
	_, err := TemperatureBars(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTemperatureBars_SavesPNG(t *testing.T) {
	p, err := TemperatureBars([]BarGroup{
		{Label: "London", Current: 12.3, Min: 10, Max: 14.1},
		{Label: "Abuja", Current: 31, Min: 29.5, Max: 33},
	})
	require.NoError(t, err)
	assert.Equal(t, "Temperatures of Different Cities", p.Title.Text)
	assert.Equal(t, "Temperatures (°C)", p.Y.Label.Text)

	path := filepath.Join(t.TempDir(), "city_weather_chart.png")
	require.NoError(t, Save(p, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestForecastLines_SkipsEmptySeries(t *testing.T) {
	_, err := ForecastLines([]Series{{Label: "Nowhere"}})
	assert.ErrorIs(t, err, ErrNoData)

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p, err := ForecastLines([]Series{
		{Label: "Nowhere"},
		{Label: "London", Points: []Point{
			{Time: start, Value: 11},
			{Time: start.Add(3 * time.Hour), Value: 12.5},
			{Time: start.Add(6 * time.Hour), Value: 9.8},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Temperature Forecast for the next five days.", p.Title.Text)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(p, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSave_BadPath(t *testing.T) {
	p, err := TemperatureBars([]BarGroup{{Label: "London", Current: 1, Min: 0, Max: 2}})
	require.NoError(t, err)
	assert.Error(t, Save(p, filepath.Join(t.TempDir(), "missing", "chart.png")))
}
