// Package rag splits document text into fixed-size overlapping chunks for
// length-limited consumers.
//
//	chunker := rag.NewChunker(rag.ChunkerConfig{ChunkSize: 2000, ChunkOverlap: 200})
//	for _, c := range chunker.Chunk(doc.ID, doc.Text) {
//		fmt.Println(c.Index, c.Start, c.End)
//	}
//
// Chunk ends snap back to the nearest paragraph break, sentence end or
// whitespace within the last half of the window, so chunks rarely cut words.
// Chunk IDs are derived from the document ID and the chunk index and are
// stable across runs.
package rag
