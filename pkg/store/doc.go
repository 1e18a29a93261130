/*
Package store provides observer-side containers for values pushed by a session.

A Writable holds exactly one value and replaces it wholesale on every Set; there
is no incremental diffing. Subscribers always observe the most recent value: a
slow subscriber misses intermediate values rather than blocking the writer.
*/
package store
