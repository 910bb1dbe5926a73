// Package output decides where each processed copy is written.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/params"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Resolver maps a source file and copy index to its output paths
type Resolver struct {
	sourceRoot    string
	destRoot      string
	keepStructure bool
	prefix        string
	suffix        string
	formats       []types.Format
}

// NewResolver creates a resolver for the output settings of p
func NewResolver(p params.ParameterSet) *Resolver {
	return &Resolver{
		sourceRoot:    filepath.Clean(p.SourceDir),
		destRoot:      filepath.Clean(p.DestDir),
		keepStructure: p.KeepStructure,
		prefix:        p.Prefix,
		suffix:        p.Suffix,
		formats:       p.ExportFormats(),
	}
}

// Resolve returns the target for copy copyIndex (1-based) of source and creates its directory.
// The copy number is only appended when more than one copy is made. Distinct sources with the
// same stem in the same directory resolve to the same paths; the later write wins.
func (r *Resolver) Resolve(source string, copyIndex, totalCopies int) (types.OutputTarget, error) {
	dir, err := r.dir(source)
	if err != nil {
		return types.OutputTarget{}, err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return types.OutputTarget{}, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	base := BaseName(source, r.prefix, r.suffix, copyIndex, totalCopies)
	target := types.OutputTarget{Dir: dir, Base: base}
	for _, f := range r.formats {
		target.Paths = append(target.Paths, types.OutputPath{
			Format: f,
			Path:   filepath.Join(dir, base+f.Extension()),
		})
	}
	return target, nil
}

func (r *Resolver) dir(source string) (string, error) {
	if !r.keepStructure {
		return r.destRoot, nil
	}
	rel, err := filepath.Rel(r.sourceRoot, filepath.Dir(filepath.Clean(source)))
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", source, r.sourceRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source %s is outside %s", source, r.sourceRoot)
	}
	return filepath.Join(r.destRoot, rel), nil
}

// BaseName builds prefix + stem + suffix, plus "_<copy>" when totalCopies > 1
func BaseName(source, prefix, suffix string, copyIndex, totalCopies int) string {
	name := filepath.Base(source)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	base := prefix + stem + suffix
	if totalCopies > 1 {
		base = fmt.Sprintf("%s_%d", base, copyIndex)
	}
	return base
}
