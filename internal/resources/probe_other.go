//go:build !linux

package resources

func (linuxProbe) MaxFileDescriptors() (int, error) {
	return 0, errUnsupportedPlatform
}
