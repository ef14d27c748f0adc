//go:build linux

package resources

import "syscall"

func (linuxProbe) MaxFileDescriptors() (int, error) {
	var rlimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, err
	}
	return int(rlimit.Cur), nil
}
