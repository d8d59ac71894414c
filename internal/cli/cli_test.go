package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

type recordingRunner struct {
	batches [][]types.Location
	err     error
}

func (r *recordingRunner) run(_ context.Context, locs []types.Location) error {
	r.batches = append(r.batches, locs)
	return r.err
}

func TestRunCurrentSession_LoopsUntilQuit(t *testing.T) {
	in := strings.NewReader("London,GB\n\nabuja;paris,fr\nquit\nNeverRead\n")
	var out bytes.Buffer
	r := &recordingRunner{}

	require.NoError(t, RunCurrentSession(context.Background(), in, &out, r.run, zap.NewNop()))

	require.Len(t, r.batches, 2)
	assert.Equal(t, []types.Location{{City: "London", CountryCode: "GB"}}, r.batches[0])
	assert.Equal(t, []types.Location{{City: "Abuja"}, {City: "Paris", CountryCode: "FR"}}, r.batches[1])
	assert.Contains(t, out.String(), "Enter a valid city and/or country")
	assert.True(t, strings.HasSuffix(out.String(), "Exiting the session...\n"))
}

func TestRunCurrentSession_BatchErrorDoesNotStop(t *testing.T) {
	in := strings.NewReader("London\nAbuja\n")
	var out bytes.Buffer
	r := &recordingRunner{err: errors.New("disk full")}

	require.NoError(t, RunCurrentSession(context.Background(), in, &out, r.run, zap.NewNop()))
	assert.Len(t, r.batches, 2)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: disk full"))
}

func TestRunCurrentSession_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &recordingRunner{}

	err := RunCurrentSession(ctx, strings.NewReader("London\n"), &bytes.Buffer{}, r.run, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.batches)
}

func TestRunForecastSession_SingleBatch(t *testing.T) {
	in := strings.NewReader("\nLondon;Abuja\nParis\n")
	var out bytes.Buffer
	r := &recordingRunner{}

	require.NoError(t, RunForecastSession(context.Background(), in, &out, r.run, zap.NewNop()))
	require.Len(t, r.batches, 1)
	assert.Len(t, r.batches[0], 2)
	assert.Contains(t, out.String(), "Please enter a valid city and/or country code.")
}

func TestRunForecastSession_Quit(t *testing.T) {
	var out bytes.Buffer
	r := &recordingRunner{}

	require.NoError(t, RunForecastSession(context.Background(), strings.NewReader("quit\n"), &out, r.run, zap.NewNop()))
	assert.Empty(t, r.batches)
	assert.Contains(t, out.String(), "Exiting session...")
}

func TestRunForecastSession_Error(t *testing.T) {
	r := &recordingRunner{err: errors.New("chart failed")}
	err := RunForecastSession(context.Background(), strings.NewReader("London\n"), &bytes.Buffer{}, r.run, zap.NewNop())
	assert.EqualError(t, err, "chart failed")
}

func TestRunCurrentSession_InterruptWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := &recordingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		done <- RunCurrentSession(ctx, pr, io.Discard, r.run, zap.NewNop())
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, r.batches)
	case <-time.After(2 * time.Second):
		t.Fatal("session still waiting for input after the context was cancelled")
	}
}

func TestRunForecastSession_InterruptWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := &recordingRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		done <- RunForecastSession(ctx, pr, io.Discard, r.run, zap.NewNop())
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, r.batches)
	case <-time.After(2 * time.Second):
		t.Fatal("session still waiting for input after the context was cancelled")
	}
}
