package binary

import (
	"fmt"

	"github.com/spf13/afero"
)

// checkWritableDir verifies through fs that dir exists, is a directory and
// accepts new files. Directories on the OS filesystem are checked with the
// platform's access check; other filesystems get a scratch file.
func checkWritableDir(fs afero.Fs, dir string) error {
	info, err := fs.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDestinationUnwritable, dir)
	}

	check := accessWrite
	if info.Sys() == nil {
		check = func(dir string) error { return tryWrite(fs, dir) }
	}
	if err := check(dir); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, dir, err)
	}
	return nil
}

// tryWrite creates and removes a file in dir.
func tryWrite(fs afero.Fs, dir string) error {
	f, err := afero.TempFile(fs, dir, ".scfetch-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return fs.Remove(name)
}
