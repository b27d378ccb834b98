package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"epubfix/internal/errors"

	"github.com/google/uuid"
)

// lockFileName is the flock target created inside the output directory for
// the duration of a batch run.
const lockFileName = ".epubfix.lock"

// Status classifies the outcome for one input.
type Status string

const (
	StatusRepaired Status = "repaired"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Result is the outcome of repairing a single input.
type Result struct {
	Err       error  `json:"-"`
	Input     string `json:"input"`
	Kind      Kind   `json:"kind"`
	Output    string `json:"output,omitempty"`
	Status    Status `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	RunID     string   `json:"run_id"`
	InputDir  string   `json:"input_dir"`
	OutputDir string   `json:"output_dir"`
	Total     int      `json:"total"`
	Repaired  int      `json:"repaired"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// Repair rebuilds a single input into outputDir.
//
// If the destination already exists and overwrite is false, the input is
// skipped (a non-fatal outcome). With overwrite set, the staged temp file is
// renamed over the existing destination atomically.
func Repair(in Input, outputDir string, overwrite bool, cfg *Config) Result {
	result := Result{
		Input: in.Path,
		Kind:  in.Kind,
	}

	destPath := filepath.Join(outputDir, in.OutputName())

	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return failed(result, errors.DestinationExists(destPath))
		}
	}

	if err := Rebuild(in, destPath, cfg.ToSecurityLimits()); err != nil {
		return failed(result, err)
	}

	result.Status = StatusRepaired
	result.Output = destPath
	return result
}

// failed fills in the error fields of a result. DESTINATION_EXISTS is
// classified as a skip rather than a failure.
func failed(result Result, err error) Result {
	result.Err = err
	result.ErrorCode = errors.Code(err)
	result.ErrorMsg = err.Error()
	if errors.Is(err, errors.CodeDestinationExists) {
		result.Status = StatusSkipped
	} else {
		result.Status = StatusFailed
	}
	return result
}

// Run repairs every .epub item found directly in inputDir into outputDir.
//
// Inputs are processed sequentially in name order; a failed input is recorded
// and the run continues with the next one. The output directory is created if
// absent and held under an exclusive flock for the whole run.
func Run(inputDir, outputDir string, overwrite bool, cfg *Config) (*Summary, error) {
	inputs, err := Discover(inputDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		if os.IsPermission(err) {
			return nil, errors.PermissionDenied(outputDir, err)
		}
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lockPath := filepath.Join(outputDir, lockFileName)
	lock, err := AcquireExclusive(lockPath, time.Duration(cfg.Defaults.LockTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = lock.Release()
		os.Remove(lockPath)
	}()

	summary := &Summary{
		RunID:     uuid.New().String(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Total:     len(inputs),
	}

	for _, in := range inputs {
		result := Repair(in, outputDir, overwrite, cfg)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case StatusRepaired:
			summary.Repaired++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	return summary, nil
}
