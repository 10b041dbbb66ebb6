package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/crossflow/pkg/graph"
	"github.com/matzehuels/crossflow/pkg/render"
	"github.com/matzehuels/crossflow/pkg/render/nodelink"
	"github.com/matzehuels/crossflow/pkg/sankey"
)

// Render generates the requested formats concurrently. placeholder, when
// non-empty, is drawn in place of the diagram in SVG output.
func Render(ctx context.Context, l *sankey.Layout, opts Options, placeholder string) (map[string][]byte, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, l, opts, format, placeholder)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l *sankey.Layout, opts Options, format, placeholder string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(l, buildSVGOptions(l, opts, placeholder)...), nil
	case FormatJSON:
		return graph.MarshalLayout(ExportLayout(l))
	case FormatDOT:
		return []byte(ExportNodelink(l, opts).DOT), nil
	case FormatNodelink:
		return nodelink.RenderSVG(ctx, ExportNodelink(l, opts).DOT)
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}

// buildSVGOptions builds SVG rendering options. Highlighted references that
// match no link are ignored.
func buildSVGOptions(l *sankey.Layout, opts Options, placeholder string) []render.SVGOption {
	var svgOpts []render.SVGOption

	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	if opts.NoLabels {
		svgOpts = append(svgOpts, render.WithoutLabels())
	}
	if placeholder != "" {
		svgOpts = append(svgOpts, render.WithPlaceholder(placeholder))
	}

	var links []int
	for _, ref := range opts.Highlight {
		if i, ok := l.Graph().LinkIndexForRef(ref); ok {
			links = append(links, i)
		}
	}
	if len(links) > 0 {
		svgOpts = append(svgOpts, render.WithHighlight(links...))
	}
	return svgOpts
}
