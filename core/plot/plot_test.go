package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chartproof/chartproof/core/bench"
	"github.com/chartproof/chartproof/core/canon"
)

func sampleMeasurements() []bench.Measurement {
	var ms []bench.Measurement
	for _, mapType := range []string{"SquareMap", "std::map"} {
		for _, size := range []int{64, 1024, 16384} {
			ms = append(ms, bench.Measurement{
				Operation:     "Insert",
				MapType:       mapType,
				KeyOrder:      "Random",
				Size:          size,
				TimePerItemNS: 20 + float64(size)/100,
			})
		}
	}
	// A second chart key.
	ms = append(ms, bench.Measurement{
		Operation:     "Lookup",
		MapType:       "SquareMap",
		KeyOrder:      "Sequential",
		Size:          1024,
		TimePerItemNS: 35,
	})
	// No counter: dropped.
	ms = append(ms, bench.Measurement{
		Operation: "Insert",
		MapType:   "SquareMap",
		KeyOrder:  "Random",
		Size:      4096,
	})
	return ms
}

func TestBuild(t *testing.T) {
	charts := Build(sampleMeasurements())
	if len(charts) != 2 {
		t.Fatalf("got %d charts, want 2", len(charts))
	}

	insert := charts[0]
	if insert.Operation != "Insert" || insert.KeyOrder != "Random" {
		t.Errorf("first chart = %s/%s, want Insert/Random", insert.Operation, insert.KeyOrder)
	}
	// Two data series plus O(1), O(log n), O(n) guides.
	if len(insert.Series) != 5 {
		t.Fatalf("got %d series, want 5", len(insert.Series))
	}
	if insert.Series[0].Label != "SquareMap" {
		t.Errorf("first series = %q, want SquareMap", insert.Series[0].Label)
	}
	// The measurement without a time_per_item counter is dropped.
	if len(insert.Series[0].Points) != 3 {
		t.Errorf("got %d points, want 3", len(insert.Series[0].Points))
	}
	// Points sorted by size.
	pts := insert.Series[0].Points
	for i := 1; i < len(pts); i++ {
		if pts[i-1].Size >= pts[i].Size {
			t.Errorf("points not sorted by size: %v", pts)
		}
	}

	for _, s := range insert.Series[2:] {
		if !s.Guide {
			t.Errorf("series %q should be a guide", s.Label)
		}
	}
}

func TestRender_Canonical(t *testing.T) {
	charts := Build(sampleMeasurements())
	out := charts[0].Render()

	// Rendered output is already canonical.
	if canonical := canon.Canonicalize(string(out)); canonical != string(out) {
		t.Error("rendered chart is not canonical")
	}
	// The generated clip id has been renumbered.
	if !bytes.Contains(out, []byte(`id="p1"`)) {
		t.Error("expected renumbered clip path id p1")
	}
	if !bytes.Contains(out, []byte(`clip-path="url(#p1)"`)) {
		t.Error("expected clip-path reference to p1")
	}
	if bytes.Contains(out, []byte("xlink:href")) {
		t.Error("canonical chart must not contain xlink:href")
	}
}

func TestRender_Deterministic(t *testing.T) {
	charts := Build(sampleMeasurements())
	a := charts[0].Render()
	b := charts[0].Render()
	if !bytes.Equal(a, b) {
		t.Error("two renders of the same chart differ")
	}
}

func TestRender_ContainsSeriesAndLabels(t *testing.T) {
	charts := Build(sampleMeasurements())
	out := string(charts[0].Render())

	for _, want := range []string{
		"Insert Performance - Random",
		"Container Size",
		"Time per Item (nanoseconds)",
		"SquareMap",
		"O(1) reference",
		"O(n) reference",
		"<path",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered chart missing %q", want)
		}
	}
}

func TestRenderAll(t *testing.T) {
	outDir := t.TempDir()
	paths, err := RenderAll(sampleMeasurements(), outDir)
	if err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d charts, want 2", len(paths))
	}
	want := filepath.Join(outDir, "Insert_Random.svg")
	if paths[0] != want {
		t.Errorf("first path = %q, want %q", paths[0], want)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("failed to read %s: %v", p, err)
		}
		if !strings.Contains(string(data), "<svg") {
			t.Errorf("%s does not look like SVG", p)
		}
	}
}
