package metrics

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegisteredUnderNamespace(t *testing.T) {
	LoginsTotal.WithLabelValues("success")
	VideoSharesTotal.WithLabelValues("general")

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"tubehub_auth_logins_total",
		"tubehub_audit_events_dropped_total",
		"tubehub_videos_views_total",
		"tubehub_videos_shares_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

// The core packages record metrics through this package and must never
// depend on the HTTP layer.
func TestCoreDoesNotImportTransport(t *testing.T) {
	root := filepath.Join("..", "..", "core")
	fset := token.NewFileSet()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			p, _ := strconv.Unquote(imp.Path.Value)
			if strings.Contains(p, "/internal/api") || strings.Contains(p, "/internal/infrastructure") {
				t.Errorf("%s imports %s", path, p)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}
