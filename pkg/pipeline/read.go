package pipeline

import (
	"bytes"
	"fmt"
	"os"

	"github.com/matzehuels/crossflow/pkg/cache"
	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/table"
)

// Read decodes the input table and returns it with the content hash of the
// raw file, which keys every cache entry derived from it.
func Read(path string) (*table.Table, string, error) {
	format, err := table.FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "%s does not exist", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	t, err := table.Read(bytes.NewReader(data), format)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return t, cache.Hash(data), nil
}

// ResolveSelection turns the configured columns into a selection for t.
// Explicit columns must exist. Missing ones are filled in by the column
// strategy; when the strategy cannot help the selection stays incomplete,
// which is not an error.
func ResolveSelection(t *table.Table, opts Options) (flow.Selection, error) {
	for _, c := range []string{opts.Source, opts.Target} {
		if c != "" && !t.HasColumn(c) {
			return flow.Selection{}, errors.New(errors.ErrCodeUnknownColumn,
				"column %q not found (have %v)", c, t.Columns)
		}
	}

	sel := flow.Selection{Source: opts.Source, Target: opts.Target}
	if sel.Complete() {
		return sel, nil
	}
	src, dst, ok := opts.ColumnStrategy().DefaultColumns(t.Columns)
	if !ok {
		return sel, nil
	}
	if sel.Source == "" {
		sel.Source = pick(sel.Target, src, dst)
	}
	if sel.Target == "" {
		sel.Target = pick(sel.Source, dst, src)
	}
	return sel, nil
}

// pick returns the first candidate different from taken.
func pick(taken string, candidates ...string) string {
	for _, c := range candidates {
		if c != taken {
			return c
		}
	}
	return ""
}

// Build aggregates the selected columns of t into a flow graph.
func Build(t *table.Table, sel flow.Selection) *flow.Graph {
	return flow.Build(t.Rows, sel)
}
