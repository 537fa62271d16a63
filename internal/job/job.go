package job

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the root of the image endpoint.
const DefaultBaseURL = "https://picsum.photos"

// Dimension is the width and height of an image. It names both the remote
// image size and the local subdirectory the image is saved to.
type Dimension struct {
	Width  uint16
	Height uint16
}

// DirName returns the canonical subdirectory name, e.g. "1920x1080".
func (d Dimension) DirName() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// URL returns the endpoint URL for an image of this size under baseURL.
// An empty baseURL uses DefaultBaseURL.
func (d Dimension) URL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%d/%d", strings.TrimRight(baseURL, "/"), d.Width, d.Height)
}

func (d Dimension) String() string {
	return d.DirName()
}

// Job is a single image to download and save.
type Job struct {
	Index     int
	URL       string
	Dimension Dimension
	Name      string
}

// Name returns the output filename for the job at index i.
func Name(i int) string {
	return fmt.Sprintf("image-%d.jpg", i)
}

// Build returns count jobs for images of size dim, indexed from 0.
// All jobs share the same dimension and URL.
func Build(count uint16, dim Dimension, baseURL string) []Job {
	url := dim.URL(baseURL)
	jobs := make([]Job, 0, count)
	for i := 0; i < int(count); i++ {
		jobs = append(jobs, Job{
			Index:     i,
			URL:       url,
			Dimension: dim,
			Name:      Name(i),
		})
	}
	return jobs
}

// Result is the outcome of executing one job. Location is set only when
// Err is nil.
type Result struct {
	Job      Job
	Location string
	Bytes    int64
	Err      error
}

// OK reports whether the job completed successfully.
func (r Result) OK() bool {
	return r.Err == nil
}
