//go:build !windows

package binary

import "golang.org/x/sys/unix"

func accessWrite(dir string) error {
	return unix.Access(dir, unix.W_OK)
}
