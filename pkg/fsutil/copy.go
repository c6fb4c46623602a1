package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/RedHatSatellite/rhel8-kickstart-setup/internal/constants"
)

// CopyFile copies src into destDir keeping its basename.
func CopyFile(src, destDir string) error {
	return CopyFileTo(src, filepath.Join(destDir, filepath.Base(src)))
}

// CopyFileTo copies src to the exact path dest, preserving the source mode.
func CopyFileTo(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyTree recursively copies the tree rooted at src to dst. dst must not
// exist yet, this is a creation and not a merge. Entries named TRANS.TBL
// are skipped at every level.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return err
	}
	// Create writable and restore the source mode once populated, ISO
	// directories usually come in read-only.
	if err := os.Mkdir(dst, os.ModePerm); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Name() == constants.TransTbl {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			err = CopyTree(srcPath, dstPath)
		} else {
			err = CopyFileTo(srcPath, dstPath)
		}
		if err != nil {
			return err
		}
	}
	return os.Chmod(dst, info.Mode().Perm())
}
