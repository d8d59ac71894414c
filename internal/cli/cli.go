package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/namefreezers/city-weather-charts/internal/prompt"
	"github.com/namefreezers/city-weather-charts/internal/weather/types"
)

// Runner is the batch operation a session drives; ReportService.RunCurrent and
// ReportService.RunForecast both fit.
type Runner func(ctx context.Context, locs []types.Location) error

// RunCurrentSession prompts for batches of cities until the user quits or the
// input ends, running every batch.
func RunCurrentSession(ctx context.Context, in io.Reader, out io.Writer, run Runner, logger *zap.Logger) error {
	session := prompt.NewSession(in, out, prompt.CurrentPrompt, prompt.CurrentEmptyHint)
	for {
		locs, err := session.Next(ctx)
		switch {
		case errors.Is(err, prompt.ErrQuit):
			fmt.Fprintln(out, "Exiting the session...")
			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(out)
			return nil
		case err != nil:
			return err
		}
		// a line may arrive together with the interrupt
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := run(ctx, locs); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			logger.Error("batch failed", zap.Int("cities", len(locs)), zap.Error(err))
		}
	}
}

// RunForecastSession prompts until it gets one batch of cities, runs it and returns.
func RunForecastSession(ctx context.Context, in io.Reader, out io.Writer, run Runner, logger *zap.Logger) error {
	session := prompt.NewSession(in, out, prompt.ForecastPrompt, prompt.ForecastEmptyHint)
	locs, err := session.Next(ctx)
	switch {
	case errors.Is(err, prompt.ErrQuit):
		fmt.Fprintln(out, "Exiting session...")
		return nil
	case errors.Is(err, io.EOF):
		fmt.Fprintln(out)
		return nil
	case err != nil:
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := run(ctx, locs); err != nil {
		logger.Error("forecast failed", zap.Int("cities", len(locs)), zap.Error(err))
		return err
	}
	return nil
}
