// Package storage provides the optional notice journal.
//
// The journal is an append-only record of every notification attempt
// (delivered or not). The daemon never reads it back: poll state stays
// in memory and is rebuilt from scratch on every start.
package storage
