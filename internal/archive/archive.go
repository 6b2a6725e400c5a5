// Package archive creates and reads deterministic tar.xz bundles.
//
// Bundles of canonical charts must themselves be byte-reproducible, so tar
// metadata is normalized: entries sorted by name, fixed mode, zero
// owner, epoch timestamps.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ulikunitz/xz"
)

// CreateTarXz packs the named files into a tar.xz archive at dstPath.
// Entries are stored flat under their base names, sorted for determinism.
func CreateTarXz(paths []string, dstPath string) error {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	xw, err := xz.NewWriter(outFile)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}

	tw := tar.NewWriter(xw)

	for _, path := range sorted {
		if err := addFile(tw, path); err != nil {
			tw.Close()
			xw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("failed to close xz writer: %w", err)
	}
	return outFile.Sync()
}

// addFile writes one file entry with normalized metadata.
func addFile(tw *tar.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header := &tar.Header{
		Name:    filepath.Base(path),
		Mode:    0644,
		Size:    info.Size(),
		ModTime: time.Unix(0, 0).UTC(),
		Format:  tar.FormatPAX,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExtractTarXz unpacks an archive created by CreateTarXz into dstDir.
func ExtractTarXz(srcPath, dstDir string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	xr, err := xz.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		// Entries are flat base names; reject anything that escapes.
		name := filepath.Base(filepath.Clean(header.Name))
		if name == "." || name == ".." {
			continue
		}
		dstPath := filepath.Join(dstDir, name)

		if err := os.MkdirAll(dstDir, 0755); err != nil {
			return fmt.Errorf("failed to create destination: %w", err)
		}
		out, err := os.Create(dstPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dstPath, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("failed to extract %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", dstPath, err)
		}
	}
	return nil
}

// List returns the entry names of an archive, in stored order.
func List(srcPath string) ([]string, error) {
	file, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	xr, err := xz.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}

	var names []string
	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry: %w", err)
		}
		names = append(names, header.Name)
	}
	return names, nil
}
