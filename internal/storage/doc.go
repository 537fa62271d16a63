// Package storage decides where downloaded images go and writes them there.
//
// # Directory Resolution
//
// [ResolveDirectory] maps a dimension and an optional base directory to the
// target directory:
//
//	{base}/{width}x{height}
//	<home>/Downloads/{width}x{height}    (base empty)
//
// [EnsureDirectory] creates the target if needed. Creation failures are
// logged, not returned; the write that follows fails for that image instead.
//
// # Stores
//
// [LocalStore] writes files directly to their final path and removes them
// again if the copy fails. [BucketStore] writes objects to any gocloud.dev
// bucket (s3://, gs://, file://, mem://) using the same
// {width}x{height}/{name} layout under an optional prefix.
package storage
