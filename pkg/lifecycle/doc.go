// Package lifecycle implements the asynchronous form lifecycle: a form opens
// in status loading with its fields disabled, remote data is merged once the
// DataLoader completes, user edits update the values and re-derive whether an
// explanation is required, and Submit drives the form through submitting to
// success or error through a SubmitTransport.
//
// Reduce is the pure transition function. Controller wraps it with the event
// plumbing: background load and submit, observers notified on every applied
// event, and Dispose to sever work that is still pending.
package lifecycle
