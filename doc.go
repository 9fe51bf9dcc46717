// Package epub reads ePub 2 and ePub 3 archives into a Book: Dublin Core
// metadata, spine-ordered chapters with their raw markup, and chapter titles
// resolved from the navigation document or the chapters' own headings.
//
// # Opening an ePub
//
// Use [Open] to parse a file by path, or [NewReader] to parse from an
// [io.ReaderAt]. Both assign a fresh id from [NewBookID]:
//
//	book, err := epub.Open("book.epub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range book.TOC() {
//	    fmt.Println(e.Index, e.Title)
//	}
//
// For finer control open the container with [OpenArchiveFile] or
// [OpenArchive] and call [Parse] with an explicit display name and id.
//
// # Chapter titles
//
// For ePub 3 packages the nav document (epub:type="toc") is consulted first,
// then the NCX. Labels are taken in document order and assigned to chapters
// by position. Without a navigation document each chapter is titled from
// its first <h1>, <h2> or <title>, and finally "Chapter N".
//
// # Error Handling
//
//   - [ErrMalformedArchive] – not a ZIP, or META-INF/container.xml is missing
//   - [ErrMissingManifest] – the package document cannot be located or decoded
//   - [ErrDRMProtected] – the book is DRM encrypted
//   - [ErrFileNotFound] – a requested file is not in the archive
//
// Problems that do not prevent reading, such as a misplaced mimetype entry
// or a spine item that cannot be read, are collected in [Book.Warnings].
package epub
