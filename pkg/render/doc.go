// Package render defines the renderer contract shared by the HTML output and
// any other representation of a bound form, plus the helpers renderers use
// for hidden inputs and theme resolution.
package render
