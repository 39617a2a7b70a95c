// Package fetcher provides the shared outbound HTTP plumbing for every data
// source client: per-host rate limiting, a fixed User-Agent, bounded body
// reads, typed transport errors and decoding helpers. It never retries.
package fetcher
