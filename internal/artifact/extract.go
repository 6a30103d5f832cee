package artifact

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/klauspost/compress/zstd"
)

// Extract unpacks archivePath into destDir (created if needed), inferring
// the codec from the file extension, ahead of a restore job driving the
// loader against the extracted directory.
func Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(archivePath, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
		}

		target := filepath.Join(destDir, hdr.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("%w: archive entry %q escapes destination directory", model.ErrCorruptArtifact, hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
			}
			out.Close()
		}
	}

	return nil
}
