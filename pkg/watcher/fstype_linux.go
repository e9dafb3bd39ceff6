//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Superblock magic numbers from linux/magic.h.
const (
	magicNFS  uint32 = 0x6969
	magicSMB  uint32 = 0x517B
	magicSMB2 uint32 = 0xFE534D42
	magicCIFS uint32 = 0xFF534D42
	magicFUSE uint32 = 0x65735546
)

func statFilesystem(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicSMB2, magicCIFS:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
