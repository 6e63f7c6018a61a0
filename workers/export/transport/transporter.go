// Package transport delivers generated export files to the
// fulfillment partner's file drop.
package transport

// Result reports the outcome of one delivery attempt. Uploaded lists
// the files that were pushed and size-verified before any failure, so
// a partial failure is fully attributable.
type Result struct {
	Success  bool
	Error    string
	Uploaded []string
}

// Transporter pushes a set of files (remote name → local path) to the
// remote party. Implementations must verify each upload and must never
// delete the local files; retention is the caller's concern.
type Transporter interface {
	Deliver(files map[string]string) Result
}
