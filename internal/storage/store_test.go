package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cellsolver/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Series: &sim.Series{
			Title: "test",
			XInfo: sim.ChannelInfo{Name: "time", Component: "env", Units: "ms"},
			X:     []float64{0, 0.1, 0.2, 1.0 / 3},
			Channels: []sim.ChannelInfo{
				{Name: "V", Component: "membrane", Units: "mV"},
				{Name: "i_Na", Component: "sodium_channel", Units: "uA"},
			},
			Y: [][]float64{
				{0, -1e-17, 123456.789, math.Pi},
				{math.NaN(), 2, math.Inf(-1), 1e300},
			},
		},
		Summary: sim.Summary{Strategy: "euler+resets", Steps: 3, Resets: 1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	res := testResult()
	params := sim.DefaultParameters()
	runID, err := st.Save("euler", params, res)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "test_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "euler", meta.Solver)
	assert.Equal(t, params, meta.Parameters)
	assert.Equal(t, "euler+resets", meta.Summary.Strategy)
	assert.Equal(t, 1, meta.Summary.Resets)
	assert.Equal(t, 4, meta.Summary.Samples)

	series, err := st.LoadSeries(runID)
	require.NoError(t, err)
	want := res.Series
	assert.Equal(t, want.Title, series.Title)
	assert.Equal(t, want.XInfo, series.XInfo)
	assert.Equal(t, want.Channels, series.Channels)
	assert.Equal(t, want.X, series.X)
	require.Len(t, series.Y, 2)
	assert.Equal(t, want.Y[0], series.Y[0])
	assert.True(t, math.IsNaN(series.Y[1][0]))
	assert.Equal(t, want.Y[1][1:], series.Y[1][1:])
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	first, err := st.Save("euler", sim.DefaultParameters(), testResult())
	require.NoError(t, err)
	second, err := st.Save("dopri5", sim.DefaultParameters(), testResult())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.Error(t, err)
	_, err = st.LoadSeries("nope")
	assert.Error(t, err)
}

func TestLoadSeriesCorrupt(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runID, err := st.Save("euler", sim.DefaultParameters(), testResult())
	require.NoError(t, err)

	path := filepath.Join(dir, runID, seriesFile)
	require.NoError(t, os.WriteFile(path, []byte("x,membrane.V,sodium_channel.i_Na\n0,abc,1\n"), 0644))
	_, err = st.LoadSeries(runID)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("x,membrane.V\n0,1\n"), 0644))
	_, err = st.LoadSeries(runID)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, testResult().Series))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "x,membrane.V,sodium_channel.i_Na", lines[0])
	assert.Equal(t, "0,0,NaN", lines[1])
	assert.Equal(t, "0.2,123456.789,-Inf", lines[3])
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, testResult().Series))

	var decoded struct {
		Title    string            `json:"title"`
		XInfo    sim.ChannelInfo   `json:"x_info"`
		X        []float64         `json:"x"`
		Channels []sim.ChannelInfo `json:"channel_info"`
		Y        [][]*float64      `json:"y"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "test", decoded.Title)
	assert.Equal(t, "ms", decoded.XInfo.Units)
	assert.Len(t, decoded.Channels, 2)
	assert.Nil(t, decoded.Y[1][0])
	assert.Nil(t, decoded.Y[1][2])
	require.NotNil(t, decoded.Y[1][1])
	assert.Equal(t, 2.0, *decoded.Y[1][1])
}
