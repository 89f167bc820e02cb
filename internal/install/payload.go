package install

import (
	"bytes"
	"strings"
)

// Kind selects the install strategy for a payload.
type Kind int

// Payload kinds.
const (
	KindDatastream Kind = iota
	KindArchive
	KindInstaller
)

func (k Kind) String() string {
	switch k {
	case KindDatastream:
		return "datastream"
	case KindArchive:
		return "archive"
	case KindInstaller:
		return "installer"
	default:
		return "unknown"
	}
}

// Format is the container format of an archive payload.
type Format int

// Archive formats.
const (
	FormatNone Format = iota
	FormatZip
	FormatTarGz
)

var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	gzipMagic     = []byte{0x1f, 0x8b}
)

// Payload is a downloaded body tagged with how it must be installed.
type Payload struct {
	Kind     Kind
	Format   Format
	Filename string
	Data     []byte
}

// Sniff classifies data. Content signatures win over the filename; a filename that claims an
// archive format still selects it so a corrupt download is reported as an invalid archive.
// installer marks payloads that must be executed rather than placed.
func Sniff(data []byte, filename string, installer bool) Payload {
	p := Payload{Kind: KindDatastream, Filename: filename, Data: data}
	p.Format = sniffFormat(data, filename)
	switch {
	case installer:
		p.Kind = KindInstaller
	case p.Format != FormatNone:
		p.Kind = KindArchive
	}
	return p
}

func sniffFormat(data []byte, filename string) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic), bytes.HasPrefix(data, zipEmptyMagic):
		return FormatZip
	case bytes.HasPrefix(data, gzipMagic):
		return FormatTarGz
	}
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	}
	return FormatNone
}
