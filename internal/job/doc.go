// Package job defines the unit of work for a picsum run.
//
// A [Job] is one image to fetch. [Build] produces the ordered job list for a
// run: count jobs named image-0.jpg through image-{count-1}.jpg, all sharing
// the same [Dimension] and endpoint URL. Executing a job yields a [Result]
// rather than mutating the job, so a job can be handed to a worker without
// any shared state.
package job
