// Package artifacts owns the on-disk layout shared by every pipeline
// component.
//
// Layout maps a (video name, sub-key) pair to exactly one path. The mapping
// is pure: it never touches the filesystem, so any component can compute
// where an artifact lives without coordinating with the one that produced
// it. Video names pass through textutil.SanitizeKey before they are embedded
// in a filename.
//
// WriteFileAtomic and ReplaceFile publish artifacts through renameio so a
// reader either sees the previous file or the complete new one, never a
// partial write. Locker serializes check-then-act sequences per artifact
// slot, in-process through singleflight and across processes through flock
// files under the lock directory.
package artifacts
