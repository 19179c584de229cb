// Package ingestion keeps the vector index of a rank folder in step with
// the documents on disk.
//
// The Indexer embeds only documents that are new or modified since they
// were last recorded in the file registry. When the registry claims
// everything is current but the vector store holds nothing for the rank,
// as happens after switching to an index of another dimension, every
// document is embedded again.
//
// Documents are split into overlapping word windows by a Chunker. Progress
// is reported as core.Event values, either over a channel (Index) or through
// a callback (IndexSync) so a caller can forward them in order.
package ingestion
