// Package progress keeps aggregated counters for the jobs handled by a
// worker pool (submitted, running, completed, failed, rejected). A tracker
// is shared by every worker and updated through Delta values.
package progress
