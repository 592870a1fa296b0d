package extract

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// IsArchive reports whether name looks like a tarball this package can
// unpack.
func IsArchive(name string) bool {
	switch {
	case strings.HasSuffix(name, ".tar"):
		return true
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return true
	}
	return false
}

// Extract unpacks the tarball at archivePath into destDir, creating it
// if needed. Gzipped tarballs are detected by extension.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("error opening archive: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("error reading gzip stream: %v", err)
		}
		defer zr.Close()
		r = zr
	}
	if err := Untar(r, destDir); err != nil {
		return fmt.Errorf("error extracting %s: %w", filepath.Base(archivePath), err)
	}
	return nil
}

// Untar unpacks a tar stream into destDir. Entries with absolute paths
// or ".." components are rejected; entry types other than directories
// and regular files are skipped.
func Untar(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("error creating destination directory: %v", err)
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar entry: %v", err)
		}
		name := filepath.FromSlash(hdr.Name)
		if err := checkEntryName(name); err != nil {
			return err
		}
		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode&0777)|0700); err != nil {
				return fmt.Errorf("error creating directory %q: %v", name, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, os.FileMode(hdr.Mode&0777), tr); err != nil {
				return fmt.Errorf("error extracting %q: %v", name, err)
			}
		default:
			log.Debug().Str("op", "extract/extract").Msgf("Skipping entry %q with type %c", name, hdr.Typeflag)
		}
	}
	return nil
}

func checkEntryName(name string) error {
	if filepath.IsAbs(name) {
		return fmt.Errorf("bad name %q in archive: absolute path", name)
	}
	for _, part := range strings.Split(name, string(os.PathSeparator)) {
		if part == ".." {
			return fmt.Errorf("bad name %q in archive: path traversal", name)
		}
	}
	return nil
}

func writeFile(target string, mode os.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode|0400)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}
