// Package core holds small numeric and buffer helpers shared by the
// filter, true-peak and loudness packages.
package core
