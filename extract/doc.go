// Package extract turns documents on disk into plain text and enumerates
// the documents of a rank folder.
//
// Extractors never fail: a document that cannot be read yields empty
// text, and the caller decides whether that is enough to index.
package extract
