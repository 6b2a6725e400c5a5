package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestCreateAndExtract(t *testing.T) {
	srcDir := t.TempDir()
	paths := writeFiles(t, srcDir, map[string]string{
		"Insert_Random.svg":     "<svg>insert</svg>",
		"Lookup_Sequential.svg": "<svg>lookup</svg>",
	})

	archivePath := filepath.Join(t.TempDir(), "charts.tar.xz")
	if err := CreateTarXz(paths, archivePath); err != nil {
		t.Fatalf("CreateTarXz failed: %v", err)
	}

	dstDir := t.TempDir()
	if err := ExtractTarXz(archivePath, dstDir); err != nil {
		t.Fatalf("ExtractTarXz failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dstDir, "Insert_Random.svg"))
	if err != nil {
		t.Fatalf("failed to read extracted file: %v", err)
	}
	if string(got) != "<svg>insert</svg>" {
		t.Errorf("extracted content = %q, want %q", got, "<svg>insert</svg>")
	}
}

func TestList_SortedEntries(t *testing.T) {
	srcDir := t.TempDir()
	// Deliberately unsorted input order.
	var paths []string
	for _, name := range []string{"b.svg", "a.svg", "c.svg"} {
		path := filepath.Join(srcDir, name)
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		paths = append(paths, path)
	}

	archivePath := filepath.Join(t.TempDir(), "out.tar.xz")
	if err := CreateTarXz(paths, archivePath); err != nil {
		t.Fatalf("CreateTarXz failed: %v", err)
	}

	names, err := List(archivePath)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a.svg", "b.svg", "c.svg"}
	if len(names) != len(want) {
		t.Fatalf("got %d entries, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCreate_Deterministic(t *testing.T) {
	srcDir := t.TempDir()
	paths := writeFiles(t, srcDir, map[string]string{
		"x.svg": "<svg>x</svg>",
		"y.svg": "<svg>y</svg>",
	})

	outDir := t.TempDir()
	first := filepath.Join(outDir, "first.tar.xz")
	second := filepath.Join(outDir, "second.tar.xz")
	if err := CreateTarXz(paths, first); err != nil {
		t.Fatalf("CreateTarXz failed: %v", err)
	}
	if err := CreateTarXz(paths, second); err != nil {
		t.Fatalf("CreateTarXz failed: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("failed to read first archive: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("failed to read second archive: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two archives of the same content differ")
	}
}

func TestCreate_MissingInput(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "out.tar.xz")
	err := CreateTarXz([]string{"/nonexistent/chart.svg"}, archivePath)
	if err == nil {
		t.Error("expected error for missing input file")
	}
}
