package linker

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/grafana/regexp"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/muurk/h5bank/internal/logging"
)

// BackupSuffix is appended to the script path when PatchOptions.Backup is set.
const BackupSuffix = ".orig"

// LineChange records one rewritten declaration.
type LineChange struct {
	// Line is the 1-based line number
	Line   int
	Before string
	After  string
}

// PatchReport describes what PatchNoload found.
type PatchReport struct {
	Section string
	// Changes lists declarations rewritten to NOLOAD
	Changes []LineChange
	// AlreadyPatched counts declarations that carried NOLOAD already
	AlreadyPatched int
}

// Patched returns the number of rewritten declarations.
func (r *PatchReport) Patched() int {
	return len(r.Changes)
}

// Changed reports whether the contents differ from the input.
func (r *PatchReport) Changed() bool {
	return len(r.Changes) > 0
}

func declarationPattern(section string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(\s*)` + regexp.QuoteMeta(section) + `\s*(\(\s*NOLOAD\s*\))?\s*:(.*)$`)
}

// PatchNoload marks every declaration of section as NOLOAD and returns the
// new contents. Indentation and anything after the colon are kept.
func PatchNoload(contents, section string) (string, *PatchReport, error) {
	if strings.TrimSpace(section) == "" {
		return "", nil, fmt.Errorf("section name is empty")
	}

	re, err := declarationPattern(section)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build pattern for %q: %w", section, err)
	}

	report := &PatchReport{Section: section}
	lines := strings.Split(contents, "\n")
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[2] != "" {
			report.AlreadyPatched++
			continue
		}

		patched := m[1] + section + " (NOLOAD):" + m[3]
		report.Changes = append(report.Changes, LineChange{
			Line:   i + 1,
			Before: line,
			After:  patched,
		})
		lines[i] = patched
	}

	if report.Patched() == 0 && report.AlreadyPatched == 0 {
		return "", report, &SectionNotFoundError{Section: section}
	}

	return strings.Join(lines, "\n"), report, nil
}

// PatchOptions controls PatchFile.
type PatchOptions struct {
	// DryRun reports the changes without writing
	DryRun bool
	// Backup copies the original script to path+".orig" before writing
	Backup bool
}

// PatchFile applies PatchNoload to the script at path. The file is only
// written when a declaration changed; its permissions are kept.
func PatchFile(fs afero.Fs, path, section string, opts PatchOptions) (*PatchReport, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat linker script: %w", err)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read linker script: %w", err)
	}

	logging.Debug("read linker script",
		zap.String("path", path),
		zap.Int("size", len(data)),
	)

	patched, report, err := PatchNoload(string(data), section)
	if err != nil {
		var nf *SectionNotFoundError
		if errors.As(err, &nf) {
			nf.Path = path
		}
		return report, err
	}

	for _, c := range report.Changes {
		logging.Info("patched section declaration",
			zap.String("path", path),
			zap.Int("line", c.Line),
			zap.String("before", c.Before),
			zap.String("after", c.After),
		)
	}

	if !report.Changed() || opts.DryRun {
		return report, nil
	}

	if opts.Backup {
		if err := afero.WriteFile(fs, path+BackupSuffix, data, info.Mode().Perm()); err != nil {
			return report, fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := afero.WriteFile(fs, path, []byte(patched), perm(info)); err != nil {
		return report, fmt.Errorf("failed to write linker script: %w", err)
	}
	return report, nil
}

func perm(info os.FileInfo) os.FileMode {
	if p := info.Mode().Perm(); p != 0 {
		return p
	}
	return 0644
}
