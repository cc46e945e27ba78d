// Package io reads and writes paper map datasets as JSON.
//
// # JSON Format
//
// A dataset is the array written by the embedding job, one object per paper:
//
//	[
//	  {
//	    "id": 0,
//	    "title": "Gaussian Splatting for Everything",
//	    "authors": "A. Author, B. Author",
//	    "session": "Poster Session 1",
//	    "location": "ExHall D #12",
//	    "url": "https://example.com/paper/0",
//	    "x": 0.4182,
//	    "y": 0.7731
//	  }
//	]
//
// The id may be a number or a string. url, session and location may be
// empty. x and y are normalized to [0,1].
//
// # Malformed Entries
//
// Entries that are not objects, lack an id, or whose x or y is missing or
// not a number are skipped and reported in [Dataset.Skipped]; the rest of
// the file still loads. Duplicate ids are rejected because the map keys its
// marks by id.
//
// # Named Datasets
//
// Several embeddings of the same papers (t-SNE, UMAP) can be loaded side by
// side with [ParseSource] and [LoadCatalog]:
//
//	cat, err := io.LoadCatalog([]string{"tsne=tsne.json", "umap=umap.json"})
package io
