package security

import (
	"archive/zip"
	"fmt"
)

// PreScanResult contains the results of a zip bomb pre-scan.
type PreScanResult struct {
	Reason                string
	TotalUncompressedSize uint64
	FileCount             int
	MaxCompressionRatio   float64
	IsSafe                bool
}

// Limits configures the zip bomb detection thresholds.
type Limits struct {
	MaxExtractedSize    uint64  // bytes
	MaxFileCount        int
	MaxCompressionRatio float64
}

// DefaultLimits returns thresholds sized for real-world EPUBs, which are
// rarely larger than a few hundred megabytes or a few thousand entries.
func DefaultLimits() Limits {
	return Limits{
		MaxExtractedSize:    1 * 1024 * 1024 * 1024, // 1 GB
		MaxFileCount:        100000,
		MaxCompressionRatio: 100.0,
	}
}

// PreScan inspects a zip file's central directory for zip bomb indicators
// before any entry is decompressed. Only metadata is read.
//
// Returns an error if the file cannot be opened as a zip archive.
// Returns a PreScanResult with IsSafe=false if any limit is exceeded.
func PreScan(zipPath string, limits Limits) (*PreScanResult, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file: %w", err)
	}
	defer r.Close()

	return PreScanReader(&r.Reader, limits), nil
}

// PreScanReader scans an already-opened zip reader's central directory.
func PreScanReader(r *zip.Reader, limits Limits) *PreScanResult {
	result := &PreScanResult{
		IsSafe: true,
	}

	var totalUncompressed uint64
	var maxRatio float64

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		totalUncompressed += f.UncompressedSize64

		// Guard against division by zero on zero-byte stored entries.
		if f.CompressedSize64 > 0 {
			ratio := float64(f.UncompressedSize64) / float64(f.CompressedSize64)
			if ratio > maxRatio {
				maxRatio = ratio
			}
		}
	}

	result.TotalUncompressedSize = totalUncompressed
	result.FileCount = len(r.File)
	result.MaxCompressionRatio = maxRatio

	switch {
	case totalUncompressed > limits.MaxExtractedSize:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"total uncompressed size (%d bytes) exceeds limit (%d bytes)",
			totalUncompressed, limits.MaxExtractedSize)
	case len(r.File) > limits.MaxFileCount:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"file count (%d) exceeds limit (%d)",
			len(r.File), limits.MaxFileCount)
	case maxRatio > limits.MaxCompressionRatio:
		result.IsSafe = false
		result.Reason = fmt.Sprintf(
			"compression ratio (%.2f:1) exceeds limit (%.2f:1)",
			maxRatio, limits.MaxCompressionRatio)
	}

	return result
}
