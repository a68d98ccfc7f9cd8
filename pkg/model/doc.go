// Package model defines the typed form model consumed by renderers. A
// FormModel describes the fields of a form (labels, enum options, validation
// rules, UI hints such as `input: select` or `input: textarea`) and, once
// passed through Bind, the live state of a lifecycle.Snapshot: each field's
// current value, whether it is disabled, whether it is required, and the
// validation messages attached to it. Renderers only ever see bound models,
// so they never inspect the controller directly.
package model
