package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// MaxEntrySize caps the decompressed size of any single archive entry.
const MaxEntrySize int64 = 256 << 20

// Archive is an opened ePub container with named-file lookup.
//
// An Archive is not safe for concurrent use by multiple goroutines.
type Archive struct {
	zip      *zip.Reader
	exact    map[string]*zip.File
	lower    map[string]*zip.File
	closer   io.Closer
	limit    int64
	warnings []string
}

// OpenArchiveFile opens the ePub file at path. The caller must Close it.
func OpenArchiveFile(path string) (*Archive, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %v: %w", path, err, ErrMalformedArchive)
	}
	return newArchive(&zrc.Reader, zrc), nil
}

// OpenArchive reads an ePub from r. The caller keeps ownership of r.
func OpenArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epub: open zip: %v: %w", err, ErrMalformedArchive)
	}
	return newArchive(zr, nil), nil
}

func newArchive(zr *zip.Reader, closer io.Closer) *Archive {
	a := &Archive{
		zip:    zr,
		exact:  make(map[string]*zip.File, len(zr.File)),
		lower:  make(map[string]*zip.File, len(zr.File)),
		closer: closer,
		limit:  MaxEntrySize,
	}
	for _, f := range zr.File {
		if _, ok := a.exact[f.Name]; !ok {
			a.exact[f.Name] = f
		}
		lower := strings.ToLower(f.Name)
		if _, ok := a.lower[lower]; !ok {
			a.lower[lower] = f
		}
	}
	a.checkMimetype()
	return a
}

// checkMimetype records a warning when the first entry is not a
// "mimetype" file holding application/epub+zip. It never fails the open.
func (a *Archive) checkMimetype() {
	if len(a.zip.File) == 0 {
		a.warn("empty ZIP archive; mimetype entry missing")
		return
	}
	first := a.zip.File[0]
	if first.Name != "mimetype" {
		a.warn("first ZIP entry is not \"mimetype\"")
		return
	}
	data, err := a.readEntry(first)
	if err != nil {
		a.warn(fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if strings.TrimSpace(string(data)) != expectedMimetype {
		a.warn(fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

func (a *Archive) warn(msg string) {
	a.warnings = append(a.warnings, msg)
}

// Warnings returns the non-fatal problems seen while reading the archive.
func (a *Archive) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// Close releases the underlying file when the Archive came from
// OpenArchiveFile. Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Has reports whether name exists, using the same lookup as ReadFile.
func (a *Archive) Has(name string) bool {
	return a.find(name) != nil
}

// ReadFile returns the bytes of the entry at name. An exact match is
// preferred; a case-insensitive match is used as a fallback.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.find(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return a.readEntry(f)
}

// ReadText returns the entry at name as a string with any UTF-8 BOM removed.
func (a *Archive) ReadText(name string) (string, error) {
	data, err := a.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(trimBOM(data)), nil
}

func (a *Archive) find(name string) *zip.File {
	if f, ok := a.exact[name]; ok {
		return f
	}
	return a.lower[strings.ToLower(name)]
}

// readEntry decompresses f. Names outside the archive root and entries
// larger than the limit are refused; the declared size is checked first and
// the stream is cut one byte past the limit in case the header lies.
func (a *Archive) readEntry(f *zip.File) ([]byte, error) {
	if !insideArchive(f.Name) {
		return nil, fmt.Errorf("epub: entry %s escapes the archive root", f.Name)
	}
	if f.UncompressedSize64 > uint64(a.limit) {
		return nil, fmt.Errorf("epub: entry %s declares %d bytes, limit is %d", f.Name, f.UncompressedSize64, a.limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, a.limit+1))
	if err != nil {
		return nil, fmt.Errorf("epub: read entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > a.limit {
		return nil, fmt.Errorf("epub: entry %s inflates past %d bytes", f.Name, a.limit)
	}
	return data, nil
}
