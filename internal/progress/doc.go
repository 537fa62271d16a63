// Package progress reports what a run is doing.
//
// Workers call [Reporter.JobCompleted] or [Reporter.JobFailed] as each image
// finishes; the reporter prints one line per image and serializes output so
// lines from concurrent workers never interleave.
//
// # Output Format
//
//	[picsum] Downloading 50 images from https://picsum.photos/1920/1080
//	[picsum] Saving to /home/alice/Downloads/1920x1080 | Workers: 4
//	[picsum] Downloaded image to /home/alice/Downloads/1920x1080/image-0.jpg
//	[picsum] Failed image-7.jpg: fetch image-7.jpg: unexpected status: 503 Service Unavailable
//	[picsum] Done: 49 succeeded, 1 failed | 12.31 MB in 8.4s
package progress
