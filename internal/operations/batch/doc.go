// Package batch uploads a set of blobs in rounds.
// Each round writes every pending blob concurrently; only the blobs whose write
// failed carry over to the next round, until none remain or the attempt
// ceiling is reached.
package batch
