package artifact

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/casparjones/rdumper/internal/model"
	"github.com/klauspost/compress/zstd"
)

// extensionFor maps a Compression choice to its archive extension. "none"
// still produces a plain, uncompressed tar — the archive container is
// always applied, only the codec inside varies.
func extensionFor(c model.Compression) model.ArchiveExtension {
	switch c {
	case model.CompressionGzip:
		return model.ExtGzip
	case model.CompressionZstd:
		return model.ExtZstd
	default:
		return model.ExtTar
	}
}

// Seal tars sourceDir into destDir/<dirName>.tar.<ext>, applying the
// configured compressor, and writes the metadata.json sidecar. Reimplementing
// the compression codec itself is out of scope — only invoking archive/tar
// plus a streaming compressor is the core's responsibility here.
func Seal(sourceDir, destDir, dirName string, compression model.Compression, meta model.ArtifactMetadata) (filePath string, size int64, err error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}

	ext := extensionFor(compression)
	filePath = filepath.Join(destDir, ArchiveFileName(dirName, string(ext)))

	if err := writeArchive(sourceDir, filePath, compression); err != nil {
		_ = os.Remove(filePath)
		return "", 0, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}

	if err := writeMetadataSidecar(destDir, meta); err != nil {
		_ = os.Remove(filePath)
		return "", 0, err
	}

	return filePath, info.Size(), nil
}

func writeArchive(sourceDir, filePath string, compression model.Compression) error {
	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}
	defer out.Close()

	var w io.Writer = out
	var closer func() error

	switch compression {
	case model.CompressionGzip:
		gz := gzip.NewWriter(out)
		w = gz
		closer = gz.Close
	case model.CompressionZstd:
		zw, err := zstd.NewWriter(out)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
		}
		w = zw
		closer = zw.Close
	}

	tw := tar.NewWriter(w)

	walkErr := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, walkErr)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}
	if closer != nil {
		if err := closer(); err != nil {
			return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
		}
	}
	return out.Sync()
}

const metadataFileName = "metadata.json"

func writeMetadataSidecar(destDir string, meta model.ArtifactMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}
	path := filepath.Join(destDir, metadataFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", model.ErrFilesystemFailure, err)
	}
	return nil
}

// ReadMetadataSidecar loads the authoritative restore descriptor for a
// sealed artifact directory.
func ReadMetadataSidecar(dir string) (model.ArtifactMetadata, error) {
	var meta model.ArtifactMetadata
	data, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		return meta, fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("%w: %v", model.ErrCorruptArtifact, err)
	}
	return meta, nil
}
