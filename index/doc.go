// Package index decodes the sorted index map stored next to every segment.
//
// The index blob is a finite state transducer (FST) mapping byte-string keys,
// in lexicographic order, to uint64 values. Segments are uploaded with their
// index bytes verbatim; fetches parse them into a Map:
//
//	m, err := index.Parse(blob)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	off, ok, err := m.Get([]byte("page-42"))
//
// Builder produces the same encoding.
package index
