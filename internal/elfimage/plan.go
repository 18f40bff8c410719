package elfimage

import (
	"context"
	"debug/elf"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/h5bank/internal/config"
	"github.com/muurk/h5bank/internal/logging"
)

// SectionCopy is a section rebased into bank 2.
type SectionCopy struct {
	// Name is the new section name (source name + suffix)
	Name string
	// Source is the section it was copied from
	Source  string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Addr    uint64
	Align   uint64
	EntSize uint64
	// Link names the section sh_link points at in the output file, either
	// an existing section or another copy. Empty means no link.
	Link string
	Info uint32
	// LoadAddr is the flash address of the copy, used for Intel HEX output
	LoadAddr uint64
	Data     []byte
}

// DuplicatePlan describes which sections are copied and where.
type DuplicatePlan struct {
	// Sections are the source section names in copy order
	Sections []string
	// Offset is added to every address
	Offset uint64
	// Suffix is appended to every copied section name
	Suffix string
	// AllowedTypes lists the section types that may be copied
	AllowedTypes []elf.SectionType
}

// NewPlan builds a plan from the configuration.
func NewPlan(cfg *config.Config) (*DuplicatePlan, error) {
	plan := &DuplicatePlan{
		Sections: cfg.Duplicate.Sections,
		Offset:   cfg.Banks.Offset(),
		Suffix:   cfg.Duplicate.Suffix,
	}
	for _, name := range cfg.Duplicate.Types {
		t, err := ParseSectionType(name)
		if err != nil {
			return nil, fmt.Errorf("duplicate.types: %w", err)
		}
		plan.AllowedTypes = append(plan.AllowedTypes, t)
	}
	return plan, nil
}

// NewExtractor returns the extractor selected by duplicate.extractor.
func NewExtractor(cfg *config.Config, logger *zap.Logger) (Extractor, error) {
	switch cfg.Duplicate.Extractor {
	case config.ExtractorNative:
		return NativeExtractor{}, nil
	case config.ExtractorObjcopy:
		timeout, err := cfg.Tools.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		oc := DefaultObjcopyConfig()
		if cfg.Tools.Objcopy != "" {
			oc.Path = cfg.Tools.Objcopy
		}
		oc.Timeout = timeout
		return NewObjcopyExtractor(oc, logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Duplicate.Extractor)
	}
}

func (p *DuplicatePlan) allows(t elf.SectionType) bool {
	for _, a := range p.AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// UniqueSections returns Sections with repeated names dropped.
func (p *DuplicatePlan) UniqueSections() []string {
	seen := make(map[string]bool, len(p.Sections))
	out := make([]string, 0, len(p.Sections))
	for _, name := range p.Sections {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ProgressFunc is called after each section is copied.
type ProgressFunc func(done, total int, copy SectionCopy)

// Build extracts and rebases every planned section. Any missing section,
// unsupported type or size mismatch aborts the build.
func (p *DuplicatePlan) Build(ctx context.Context, img *Image, ex Extractor, progress ProgressFunc) ([]SectionCopy, error) {
	names := p.UniqueSections()
	copies := make([]SectionCopy, 0, len(names))
	planned := make(map[string]bool, len(names))
	for _, name := range names {
		planned[name] = true
	}

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := img.Section(name)
		if err != nil {
			return nil, err
		}
		if !p.allows(info.Type) {
			return nil, &UnsupportedTypeError{Section: name, Type: info.Type}
		}

		start := time.Now()
		data, err := ex.Extract(ctx, img, info)
		if err != nil {
			return nil, err
		}
		if uint64(len(data)) != info.Size {
			return nil, &SizeMismatchError{Section: name, Expected: info.Size, Actual: uint64(len(data))}
		}

		c := SectionCopy{
			Name:     name + p.Suffix,
			Source:   name,
			Type:     info.Type,
			Flags:    info.Flags,
			Addr:     info.Addr + p.Offset,
			Align:    info.Align,
			EntSize:  info.EntSize,
			Info:     info.Info,
			LoadAddr: info.LoadAddr + p.Offset,
			Data:     data,
		}
		switch {
		case info.LinkName == "":
		case planned[info.LinkName]:
			c.Link = info.LinkName + p.Suffix
		case info.Flags&elf.SHF_LINK_ORDER != 0:
			// The link target stays in bank 1, so ordering against it is void
			c.Flags &^= elf.SHF_LINK_ORDER
		default:
			c.Link = info.LinkName
		}
		copies = append(copies, c)

		logging.Debug("copied section",
			zap.String("section", name),
			zap.String("copy", c.Name),
			logging.Hex64("addr", c.Addr),
			zap.Uint64("size", info.Size),
			zap.Duration("duration", time.Since(start)),
		)

		if progress != nil {
			progress(i+1, len(names), c)
		}
	}
	return copies, nil
}

// Duplicate builds the copies and appends them to the image, returning
// the new file contents.
func (p *DuplicatePlan) Duplicate(ctx context.Context, img *Image, ex Extractor, progress ProgressFunc) ([]byte, []SectionCopy, error) {
	copies, err := p.Build(ctx, img, ex, progress)
	if err != nil {
		return nil, nil, err
	}
	out, err := AppendSections(img.Raw, copies)
	if err != nil {
		return nil, nil, err
	}
	return out, copies, nil
}
