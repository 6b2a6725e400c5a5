// Package bench reads Google Benchmark JSON result files.
//
// Benchmark names follow the templated convention
// BM_<operation><<map_type>, KeyOrder::<order>>/<size>, e.g.
// "BM_Insert<SquareMap<int, int>, KeyOrder::Random>/4096". Entries whose
// name does not match are skipped; they are fixtures or aggregates, not
// series points.
package bench

import (
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/chartproof/chartproof/core/errors"
)

// Context is the machine context block of a results file.
type Context struct {
	Date              string  `json:"date"`
	HostName          string  `json:"host_name"`
	NumCPUs           int     `json:"num_cpus"`
	MHzPerCPU         float64 `json:"mhz_per_cpu"`
	CPUScalingEnabled bool    `json:"cpu_scaling_enabled"`
	LibraryBuildType  string  `json:"library_build_type"`
}

// Measurement is one parsed benchmark data point.
type Measurement struct {
	Operation      string  // e.g. "Insert", "Lookup", "RangeIteration"
	MapType        string  // the container under test
	KeyOrder       string  // "Sequential" or "Random"
	Size           int     // container size for this point
	TimePerItemNS  float64 // from the time_per_item counter, 0 if absent
	CPUTimeNS      float64 // cpu_time converted to nanoseconds
	ItemsPerSecond float64
}

// Results is a fully parsed results file.
type Results struct {
	Context      Context
	Measurements []Measurement
}

type rawFile struct {
	Context    Context        `json:"context"`
	Benchmarks []rawBenchmark `json:"benchmarks"`
}

type rawBenchmark struct {
	Name           string  `json:"name"`
	RunType        string  `json:"run_type"`
	CPUTime        float64 `json:"cpu_time"`
	TimeUnit       string  `json:"time_unit"`
	ItemsPerSecond float64 `json:"items_per_second"`
	TimePerItem    float64 `json:"time_per_item"` // seconds, custom counter
}

// nameRe matches BM_<operation><<template args>>/<size>.
var nameRe = regexp.MustCompile(`^BM_(\w+)<(.+)>/(\d+)$`)

// ParseName splits a templated benchmark name into its components.
// The second template argument is the key order, with any KeyOrder::
// qualifier stripped.
func ParseName(name string) (operation, mapType, keyOrder string, size int, ok bool) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", "", 0, false
	}
	operation = m[1]
	// The map type may itself be templated and contain commas; the key
	// order is always the last template argument.
	args := strings.Split(m[2], ", ")
	mapType = m[2]
	if len(args) > 1 {
		keyOrder = strings.TrimPrefix(args[len(args)-1], "KeyOrder::")
		mapType = strings.Join(args[:len(args)-1], ", ")
	}
	size, err := strconv.Atoi(m[3])
	if err != nil {
		return "", "", "", 0, false
	}
	return operation, mapType, keyOrder, size, true
}

// Parse decodes a Google Benchmark JSON document.
func Parse(data []byte) (*Results, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &apperrors.ParseError{Format: "benchmark JSON", Message: err.Error(), Err: err}
	}

	res := &Results{Context: raw.Context}
	for _, b := range raw.Benchmarks {
		if b.RunType == "aggregate" {
			continue
		}
		operation, mapType, keyOrder, size, ok := ParseName(b.Name)
		if !ok {
			continue
		}
		res.Measurements = append(res.Measurements, Measurement{
			Operation:      operation,
			MapType:        mapType,
			KeyOrder:       keyOrder,
			Size:           size,
			TimePerItemNS:  b.TimePerItem * 1e9,
			CPUTimeNS:      toNanoseconds(b.CPUTime, b.TimeUnit),
			ItemsPerSecond: b.ItemsPerSecond,
		})
	}
	return res, nil
}

// Load reads and parses a results file.
func Load(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &apperrors.NotFoundError{Resource: "results file", ID: path, Err: err}
		}
		return nil, apperrors.NewIO("read", path, err)
	}
	res, err := Parse(data)
	if err != nil {
		if pe, isParse := err.(*apperrors.ParseError); isParse {
			pe.Path = path
		}
		return nil, err
	}
	return res, nil
}

// toNanoseconds converts a duration in the file's time_unit to ns.
// Google Benchmark defaults to nanoseconds when the unit is absent.
func toNanoseconds(v float64, unit string) float64 {
	switch unit {
	case "", "ns":
		return v
	case "us":
		return v * 1e3
	case "ms":
		return v * 1e6
	case "s":
		return v * 1e9
	default:
		return v
	}
}
