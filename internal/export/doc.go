// Package export writes daily price bars as CSV with the header
// date,open,high,low,close,volume.
package export
