// Command retrace is the command line interface for capturing mistakes,
// running AI analysis batches, confirming the results, and reviewing what is
// due under the spaced-repetition schedule.
package main
