package elfimage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Extractor reads the contents of one section.
type Extractor interface {
	Extract(ctx context.Context, img *Image, section SectionInfo) ([]byte, error)
}

// NativeExtractor reads section contents with debug/elf.
type NativeExtractor struct{}

// Extract implements Extractor.
func (NativeExtractor) Extract(ctx context.Context, img *Image, section SectionInfo) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img.SectionData(section.Name)
}

// DefaultObjcopy is the objcopy binary searched for in PATH.
const DefaultObjcopy = "arm-none-eabi-objcopy"

// ObjcopyConfig configures ObjcopyExtractor.
type ObjcopyConfig struct {
	// Path is the objcopy binary.
	// Default: "arm-none-eabi-objcopy" (searches PATH)
	Path string

	// Timeout bounds a single --dump-section invocation.
	// Default: 1 minute
	Timeout time.Duration

	// WorkDir receives the temporary dump files.
	// Default: os.TempDir()
	WorkDir string
}

// DefaultObjcopyConfig returns an ObjcopyConfig with defaults filled in.
func DefaultObjcopyConfig() ObjcopyConfig {
	return ObjcopyConfig{
		Path:    DefaultObjcopy,
		Timeout: time.Minute,
		WorkDir: os.TempDir(),
	}
}

// ObjcopyExtractor dumps sections with objcopy --dump-section. The image
// must have been opened from the OS file system since objcopy reads
// img.Path itself.
type ObjcopyExtractor struct {
	config ObjcopyConfig
	logger *zap.Logger
}

// NewObjcopyExtractor creates an extractor. A nil logger disables logging.
func NewObjcopyExtractor(config ObjcopyConfig, logger *zap.Logger) *ObjcopyExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjcopyExtractor{config: config, logger: logger}
}

// Extract implements Extractor.
func (e *ObjcopyExtractor) Extract(ctx context.Context, img *Image, section SectionInfo) ([]byte, error) {
	if img.Path == "" {
		return nil, fmt.Errorf("objcopy needs an image read from disk")
	}

	dump, err := os.CreateTemp(e.config.WorkDir, "h5bank-section-*.bin")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	dumpPath := dump.Name()
	dump.Close()
	defer os.Remove(dumpPath)

	// objcopy always writes an output file; without one it rewrites the input.
	scratchPath := dumpPath + ".elf"
	defer os.Remove(scratchPath)

	args := []string{"--dump-section", section.Name + "=" + dumpPath, img.Path, scratchPath}

	e.logger.Debug("dumping section with objcopy",
		zap.String("objcopy", e.config.Path),
		zap.Strings("args", args),
		zap.Duration("timeout", e.config.Timeout),
	)

	start := time.Now()
	stderr, exitCode, err := e.run(ctx, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Tool: e.config.Path, Section: section.Name, Timeout: e.config.Timeout}
		}
		return nil, &ToolExecutionError{
			Tool:     e.config.Path,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr,
			Err:      err,
		}
	}

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dumped section %q: %w", section.Name, err)
	}

	e.logger.Debug("objcopy complete",
		zap.String("section", section.Name),
		zap.Int("size", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

func (e *ObjcopyExtractor) run(ctx context.Context, args []string) (stderr string, exitCode int, err error) {
	timeoutCtx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		timeoutCtx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(timeoutCtx, e.config.Path, args...)
	cmd.WaitDelay = time.Second

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	err = cmd.Run()
	stderr = stderrBuf.String()

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return stderr, -1, context.DeadlineExceeded
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stderr, exitErr.ExitCode(), err
		}
		return stderr, -1, err
	}
	return stderr, 0, nil
}
