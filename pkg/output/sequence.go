package output

import (
	"fmt"
	"path/filepath"

	"github.com/VicDc/AI-Dataset-Augmenter/internal/utils"
	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// SequenceResolver writes every copy flat into one directory as prefix plus a zero padded
// copy number. The source name is not used.
type SequenceResolver struct {
	dir     string
	prefix  string
	formats []types.Format
}

// NewSequenceResolver creates a resolver writing into dir
func NewSequenceResolver(dir, prefix string, formats []types.Format) *SequenceResolver {
	return &SequenceResolver{dir: filepath.Clean(dir), prefix: prefix, formats: formats}
}

// Resolve returns the target for copy copyIndex and creates the directory
func (r *SequenceResolver) Resolve(_ string, copyIndex, _ int) (types.OutputTarget, error) {
	if err := utils.EnsureDir(r.dir); err != nil {
		return types.OutputTarget{}, fmt.Errorf("failed to create output directory %s: %w", r.dir, err)
	}

	base := SequenceName(r.prefix, copyIndex)
	target := types.OutputTarget{Dir: r.dir, Base: base}
	for _, f := range r.formats {
		target.Paths = append(target.Paths, types.OutputPath{
			Format: f,
			Path:   filepath.Join(r.dir, base+f.Extension()),
		})
	}
	return target, nil
}

// SequenceName pads n to four digits so names sort in generation order
func SequenceName(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}
