// Package fs abstracts the local filesystem used as the download sink and by
// the filesystem-backed object store.
//
//   - [LocalFS]: production implementation over the os package
//   - [FaultyFS]: wrapper injecting open, write, sync and close failures
//
// Production code uses fs.Default. Tests swap in a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("segments", fs.Fault{FailAfterBytes: 4096})
//
// Operations take no context.Context. Local syscalls are not interruptible;
// cancellation is checked by callers between chunks.
package fs
