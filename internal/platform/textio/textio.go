// Package textio reads URL lists from text files of unknown encoding and
// writes result lists back as UTF-8.
package textio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/urlfilter"
)

// Encoding names reported in Document.Encoding.
const (
	EncodingUTF8   = "utf-8"
	EncodingGBK    = "gbk"
	EncodingGB2312 = "gb2312"
	EncodingLatin1 = "iso-8859-1"
)

// DefaultImportLimit bounds concurrent file reads in ReadFiles.
const DefaultImportLimit = 4

type decoder struct {
	name   string
	decode func([]byte) (string, error)
}

// fallbackChain is tried in order until one decoder accepts the input.
var fallbackChain = []decoder{
	{EncodingUTF8, decodeUTF8},
	{EncodingGBK, decodeGBK},
	{EncodingGB2312, decodeGB2312},
	{EncodingLatin1, decodeLatin1},
}

var errInvalidBytes = errors.New("invalid byte sequence")

// Document is one imported file.
type Document struct {
	Path     string
	Encoding string
	Lines    []string
}

// Empty reports whether the file contained no URLs.
func (d Document) Empty() bool {
	return len(d.Lines) == 0
}

// Decode converts raw bytes to text using the first encoding of the
// fallback chain that accepts them.
func Decode(data []byte) (text, enc string, err error) {
	for _, d := range fallbackChain {
		out, derr := d.decode(data)
		if derr == nil {
			return out, d.name, nil
		}
	}
	return "", "", errors.ErrDecode
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errInvalidBytes
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeStrict decodes with enc and rejects output carrying replacement
// characters, which x/text emits for bytes it cannot map.
func decodeStrict(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", errInvalidBytes
	}
	return string(out), nil
}

func decodeGBK(data []byte) (string, error) {
	return decodeStrict(simplifiedchinese.GBK, data)
}

// decodeGB2312 accepts only EUC-CN byte pairs (both bytes in 0xA1-0xFE)
// and decodes them through GBK, its superset.
func decodeGB2312(data []byte) (string, error) {
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b < 0x80 {
			continue
		}
		if b < 0xA1 || b > 0xF7 || i+1 >= len(data) || data[i+1] < 0xA1 || data[i+1] > 0xFE {
			return "", errInvalidBytes
		}
		i++
	}
	return decodeStrict(simplifiedchinese.GBK, data)
}

func decodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Read decodes everything from r and splits it into URL lines.
func Read(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, errors.Wrap(err, "read input")
	}

	text, enc, err := Decode(data)
	if err != nil {
		return Document{}, err
	}

	return Document{Encoding: enc, Lines: urlfilter.CleanLines(text)}, nil
}

// ReadFile imports one file.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "import %s", path)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return Document{}, errors.Wrapf(err, "import %s", path)
	}
	doc.Path = path
	return doc, nil
}

// ReadFiles imports paths concurrently (at most limit at a time) and
// returns the documents in the order of paths. The first failure cancels
// the remaining reads.
func ReadFiles(ctx context.Context, paths []string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = DefaultImportLimit
	}

	docs := make([]Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := ReadFile(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Lines flattens the documents' lines in order.
func Lines(docs []Document) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.Lines...)
	}
	return out
}

// DefaultExportName returns the timestamped file name used when no output path is given.
func DefaultExportName(now time.Time) string {
	return fmt.Sprintf("filtered_urls_%s.txt", now.Format("20060102_150405"))
}

// WriteLines writes one line per entry, UTF-8, newline terminated.
func WriteLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// WriteFile writes lines to path, creating parent directories.
func WriteFile(path string, lines []string) error {
	return WriteAtomic(path, func(w io.Writer) error {
		return WriteLines(w, lines)
	})
}

// WriteAtomic creates parent directories, lets write fill a temporary
// sibling of path and renames it into place. path is left untouched when
// write fails.
func WriteAtomic(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create output directory")
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".urlsift-*")
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write output file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to move output file into place")
	}
	return nil
}
