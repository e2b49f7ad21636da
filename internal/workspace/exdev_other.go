//go:build !unix

package workspace

// Non-unix renames across volumes fail with platform-specific errors; any
// rename failure is treated as cross-device there.
func isEXDEV(err error) bool { return err != nil }
