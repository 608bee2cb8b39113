// Package progress reports historical catch-up progress.
//
// Components receive a Reporter at construction. On an interactive terminal
// the reporter draws one aggregate progress bar across all instances; otherwise
// it emits sampled log lines so redirected output is not flooded.
package progress
