// Package report computes the per-lane and combined statistics records
// SummaryGenerator hands to the HTML templating layer, and renders a
// console table summarizing the same numbers.
package report
