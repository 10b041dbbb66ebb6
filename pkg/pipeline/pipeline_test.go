package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/crossflow/pkg/cache"
	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/graph"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/table"
)

const scenarioCSV = "A,B\nx,p\nx,p\ny,p\nx,\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"minimal", Options{Input: "data.csv"}, false},
		{"missing input", Options{}, true},
		{"all formats", Options{Input: "d.csv", Formats: []string{"svg", "json", "dot", "nodelink"}}, false},
		{"bad format", Options{Input: "d.csv", Formats: []string{"svg", "png"}}, true},
		{"format is case-sensitive", Options{Input: "d.csv", Formats: []string{"SVG"}}, true},
		{"identity ordering", Options{Input: "d.csv", Ordering: "identity"}, false},
		{"bad ordering", Options{Input: "d.csv", Ordering: "random"}, true},
		{"keywords columns", Options{Input: "d.csv", Columns: "keywords"}, false},
		{"bad columns", Options{Input: "d.csv", Columns: "last-two"}, true},
		{"negative highlight", Options{Input: "d.csv", Highlight: []int{-1}}, true},
		{"redis needs address", Options{Input: "d.csv", Cache: CacheOptions{Backend: "redis"}}, true},
		{"redis with address", Options{Input: "d.csv", Cache: CacheOptions{Backend: "redis", RedisAddr: "localhost:6379"}}, false},
		{"bad backend", Options{Input: "d.csv", Cache: CacheOptions{Backend: "memcached"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetLayoutDefaults()
	o.SetRenderDefaults()

	want := sankey.DefaultConfig()
	if got := o.SankeyConfig(); got != want {
		t.Errorf("SankeyConfig() = %+v, want %+v", got, want)
	}
	if o.Ordering != OrderingBarycentric || o.Columns != ColumnsFirstTwo {
		t.Errorf("Ordering = %q, Columns = %q", o.Ordering, o.Columns)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q", o.Cache.Backend)
	}
	if o.Logger == nil {
		t.Error("Logger not set")
	}

	o = Options{Width: 1000, NodePadding: 4}
	o.SetLayoutDefaults()
	if o.Width != 1000 || o.NodePadding != 4 || o.Height != sankey.DefaultHeight {
		t.Errorf("explicit values not kept: %+v", o)
	}
}

func TestNewOrderer(t *testing.T) {
	if _, ok := (&Options{Ordering: OrderingIdentity}).NewOrderer().(ordering.Identity); !ok {
		t.Error("identity ordering not honored")
	}
	b, ok := (&Options{Iterations: 5}).NewOrderer().(ordering.Barycentric)
	if !ok || b.Passes != 5 {
		t.Errorf("NewOrderer() = %#v", b)
	}
	custom := ordering.Identity{}
	if got := (&Options{Ordering: OrderingBarycentric, Orderer: custom}).NewOrderer(); got != custom {
		t.Errorf("explicit orderer ignored: %#v", got)
	}
}

func TestKeyOpts(t *testing.T) {
	a := Options{Source: "A", Target: "B"}
	b := Options{Source: "A", Target: "B", Width: sankey.DefaultWidth}
	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Error("defaulted and explicit default width should key the same")
	}
	c := Options{Source: "A", Target: "C"}
	if a.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("different selections should key differently")
	}

	k := cache.NewDefaultKeyer()
	svg := k.ArtifactKey("h", a.ArtifactKeyOpts(FormatSVG))
	if svg == k.ArtifactKey("h", a.ArtifactKeyOpts(FormatDOT)) {
		t.Error("formats should key differently")
	}
	hl := Options{Highlight: []int{3}}
	if svg == k.ArtifactKey("h", hl.ArtifactKeyOpts(FormatSVG)) {
		t.Error("highlight should change the artifact key")
	}
}

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		FormatSVG:      ".svg",
		FormatJSON:     ".json",
		FormatDOT:      ".dot",
		FormatNodelink: ".nodelink.svg",
	}
	for format, want := range tests {
		if got := FileExtension(format); got != want {
			t.Errorf("FileExtension(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestResolveSelection(t *testing.T) {
	tbl := &table.Table{Columns: []string{"origin", "year", "destination"}}
	tests := []struct {
		name       string
		opts       Options
		wantSource string
		wantTarget string
		wantCode   errors.Code
	}{
		{"explicit", Options{Source: "year", Target: "origin"}, "year", "origin", ""},
		{"first two", Options{}, "origin", "year", ""},
		{"keywords", Options{Columns: ColumnsKeywords}, "origin", "destination", ""},
		{"source only", Options{Source: "destination"}, "destination", "year", ""},
		{"target only", Options{Target: "origin"}, "year", "origin", ""},
		{"unknown source", Options{Source: "nope"}, "", "", errors.ErrCodeUnknownColumn},
		{"unknown target", Options{Source: "year", Target: "nope"}, "", "", errors.ErrCodeUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ResolveSelection(tbl, tt.opts)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if sel.Source != tt.wantSource || sel.Target != tt.wantTarget {
				t.Errorf("selection = %+v, want %s -> %s", sel, tt.wantSource, tt.wantTarget)
			}
		})
	}

	single := &table.Table{Columns: []string{"only"}}
	sel, err := ResolveSelection(single, Options{})
	if err != nil || sel.Complete() {
		t.Errorf("single column: selection = %+v, err = %v; want incomplete, nil", sel, err)
	}
}

func TestRead(t *testing.T) {
	path := writeFile(t, "films.csv", scenarioCSV)
	tbl, hash, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 4 {
		t.Errorf("rows = %d, want 4", tbl.Len())
	}
	if hash != cache.Hash([]byte(scenarioCSV)) {
		t.Errorf("hash = %q", hash)
	}

	if _, _, err := Read(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, _, err := Read(writeFile(t, "data.xlsx", "")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension error = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CROSSFLOW_TEST_ADDR", "redis.internal:6379")
	path := writeFile(t, "crossflow.toml", `
input = "films.csv"
source = "director"
formats = ["svg", "json"]
width = 1024.0

[margin]
top = 10.0
left = 80.0

[cache]
backend = "redis"
redis_addr = "${CROSSFLOW_TEST_ADDR}"
`)

	opts := Options{Target: "year", Width: 640}
	if err := LoadConfig(path, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Input != "films.csv" || opts.Source != "director" || opts.Target != "year" {
		t.Errorf("read options = %+v", opts)
	}
	if opts.Width != 1024 {
		t.Errorf("Width = %v, want file value to override", opts.Width)
	}
	if opts.Margin != (sankey.Margin{Top: 10, Left: 80}) {
		t.Errorf("Margin = %+v", opts.Margin)
	}
	if opts.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("RedisAddr = %q, want expanded env", opts.Cache.RedisAddr)
	}

	bad := writeFile(t, "bad.toml", "colour = \"red\"\n")
	if err := LoadConfig(bad, &Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key error = %v", err)
	}
	broken := writeFile(t, "broken.toml", "input = \n")
	if err := LoadConfig(broken, &Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("syntax error = %v", err)
	}
	if err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"), &Options{}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		Input:   writeFile(t, "films.csv", scenarioCSV),
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
		Cache:   CacheOptions{Backend: CacheNone},
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.Placeholder != "" {
		t.Errorf("Placeholder = %q", res.Placeholder)
	}
	if sel := res.Graph.Selection(); sel != (flow.Selection{Source: "A", Target: "B"}) {
		t.Errorf("selection = %+v", sel)
	}
	want := Stats{Rows: 4, Excluded: 1, NodeCount: 3, LinkCount: 2}
	got := res.Stats
	got.ReadTime, got.BuildTime, got.LayoutTime, got.RenderTime = 0, 0, 0, 0
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}

	if svg := string(res.Artifacts[FormatSVG]); !strings.Contains(svg, "<svg") || !strings.Contains(svg, `id="link-1"`) {
		t.Errorf("svg artifact missing content:\n%s", svg)
	}
	wire, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(wire.Boxes) != 3 || len(wire.Paths) != 2 {
		t.Errorf("wire layout has %d boxes, %d paths", len(wire.Boxes), len(wire.Paths))
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.Contains(dot, "rankdir=LR") {
		t.Errorf("dot artifact:\n%s", dot)
	}
	if res.CacheInfo.RenderHit {
		t.Error("null cache reported a hit")
	}
}

func TestExecuteUnknownColumn(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Input:  writeFile(t, "films.csv", scenarioCSV),
		Source: "C",
	})
	if !errors.Is(err, errors.ErrCodeUnknownColumn) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnknownColumn)
	}
}

func TestExecutePlaceholders(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		opts Options
		want string
	}{
		{"single column", "A\nx\n", Options{}, "Select a source and a target column."},
		{"no connections", "A,B\nx,\n,p\n", Options{}, "No rows connect the selected columns."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Input = writeFile(t, "data.csv", tt.csv)
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
			if err != nil {
				t.Fatal(err)
			}
			if res.Placeholder != tt.want {
				t.Errorf("Placeholder = %q, want %q", res.Placeholder, tt.want)
			}
			if !res.Layout.Empty() {
				t.Error("layout should be empty")
			}
			if svg := string(res.Artifacts[FormatSVG]); !strings.Contains(svg, tt.want) {
				t.Errorf("svg does not show placeholder:\n%s", svg)
			}
		})
	}
}

func TestExecuteCachesArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Input:   writeFile(t, "films.csv", scenarioCSV),
		Formats: []string{FormatSVG, FormatJSON},
	}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Fatal("first run hit the cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if string(second.Artifacts[FormatSVG]) != string(first.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Title = "Films"
	fourth, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("changed title should miss the cache")
	}
}

func TestExecuteCancelledNotCached(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Input:   writeFile(t, "crossing.csv", "A,B\na,p\nb,q\nc,p\nc,p\n"),
		Formats: []string{FormatJSON},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Execute(ctx, opts); err != context.Canceled {
		t.Fatalf("cancelled Execute err = %v, want context.Canceled", err)
	}

	next, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if next.CacheInfo.RenderHit {
		t.Error("run after a cancelled run was served from the cache")
	}

	fresh, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if next.Stats.Crossings != fresh.Stats.Crossings {
		t.Errorf("crossings = %d, want %d", next.Stats.Crossings, fresh.Stats.Crossings)
	}
}

func TestRenderHighlight(t *testing.T) {
	tbl, _, err := Read(writeFile(t, "films.csv", scenarioCSV))
	if err != nil {
		t.Fatal(err)
	}
	l := ComputeLayout(context.Background(), Build(tbl, flow.Selection{Source: "A", Target: "B"}), Options{})

	out, err := Render(context.Background(), l, Options{Formats: []string{FormatSVG}, Highlight: []int{3, 4, 99}}, "")
	if err != nil {
		t.Fatal(err)
	}
	svg := string(out[FormatSVG])
	if strings.Count(svg, "stroke-opacity:0.8") != 1 {
		t.Errorf("want exactly one highlighted link:\n%s", svg)
	}

	if _, err := Render(context.Background(), l, Options{Formats: []string{"png"}}, ""); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	c, keyer, err := OpenCache(ctx, CacheOptions{Backend: CacheNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("none backend = %T", c)
	}
	if keyer == nil {
		t.Error("nil keyer")
	}

	dir := t.TempDir()
	c, keyer, err = OpenCache(ctx, CacheOptions{Backend: CacheFile, Dir: dir, Namespace: "team"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if fc, ok := c.(*cache.FileCache); !ok || fc.Dir() != dir {
		t.Errorf("file backend = %#v", c)
	}
	if key := keyer.LayoutKey("h", cache.LayoutKeyOpts{}); !strings.HasPrefix(key, "team:") {
		t.Errorf("namespaced key = %q", key)
	}

	if _, _, err := OpenCache(ctx, CacheOptions{Backend: "memcached"}); err == nil {
		t.Error("unknown backend should fail")
	}
}
