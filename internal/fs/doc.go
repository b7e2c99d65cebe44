// Package fs abstracts the file operations report sinks write through.
//
//   - [FileSystem]: temp file creation, rename, remove and directory setup
//   - [LocalFS]: production implementation on the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename errors
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.CreateTemp(dir, ".tmp-*")
//
// Tests inject a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 16})
package fs
