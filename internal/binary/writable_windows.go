//go:build windows

package binary

import "os"

// accessWrite checks dir by creating and removing a file; Windows ACLs are
// not reflected in mode bits.
func accessWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".scfetch-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
