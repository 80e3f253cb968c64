package transport

import (
	"context"
	"io"
)

// Outputs selects where Run sends its results. Zero values skip that output.
type Outputs struct {
	Report    io.Writer
	PathsFile string
}

// Run executes one ensemble and writes the report and sampled paths.
func Run(ctx context.Context, cfg Config, out Outputs, opts ...Option) (*EnsembleResult, error) {
	res, err := RunEnsemble(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if out.Report != nil {
		if err := WriteReport(out.Report, cfg, res); err != nil {
			return res, err
		}
	}
	if out.PathsFile != "" {
		if err := SavePaths(out.PathsFile, res.Paths); err != nil {
			return res, err
		}
	}
	return res, nil
}
