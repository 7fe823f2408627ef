// Package rebuild drives a recovery run: it walks the cache directory, parses
// each entry and hands the body to the repository store, one file at a time.
// By default the first failure ends the run; with ContinueOnError the runner
// records each failed entry in the Report and keeps going.
package rebuild
