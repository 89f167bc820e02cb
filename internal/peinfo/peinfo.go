// Package peinfo reads the StringFileInfo fields (company, description, product) from the version
// resource of Windows executables and libraries.
package peinfo

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/saferwall/pe"
	"github.com/saferwall/pe/log"

	"github.com/conn-castle/yaam/internal/messages"
)

// Field names understood by Parse.
const (
	CompanyName      = "CompanyName"
	FileDescription  = "FileDescription"
	ProductName      = "ProductName"
	InternalName     = "InternalName"
	OriginalFilename = "OriginalFilename"
)

// Info maps field names to their values. Missing fields are absent.
type Info map[string]string

// Get returns the trimmed value of field, or "".
func (i Info) Get(field string) string {
	return strings.TrimSpace(i[field])
}

// ReadFile parses the file at path.
func ReadFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse walks the resource directory of the PE image in data and returns the strings of its version
// resource. An image without one yields an empty Info.
func Parse(data []byte) (Info, error) {
	f, err := pe.NewBytes(data, parseOptions())
	if err != nil {
		return nil, fmt.Errorf(messages.PEInfoParseFmt, err)
	}
	if err := f.Parse(); err != nil {
		return nil, fmt.Errorf(messages.PEInfoParseFmt, err)
	}
	if !f.HasResource {
		return Info{}, nil
	}
	raw, err := f.ParseVersionResources()
	if err != nil {
		return nil, fmt.Errorf(messages.PEInfoVersionFmt, err)
	}
	info := Info{}
	for k, v := range raw {
		if k == "" {
			continue
		}
		// a non-ASCII last character leaves half of the terminator behind as U+FFFD
		info[k] = strings.TrimSpace(strings.TrimRight(v, "\uFFFD\x00"))
	}
	return info, nil
}

// parseOptions limit parsing to the directories the version resource needs.
func parseOptions() *pe.Options {
	return &pe.Options{
		Logger:                     log.NewStdLogger(io.Discard),
		DisableCertValidation:      true,
		DisableSignatureValidation: true,
		OmitExportDirectory:        true,
		OmitImportDirectory:        true,
		OmitExceptionDirectory:     true,
		OmitSecurityDirectory:      true,
		OmitRelocDirectory:         true,
		OmitDebugDirectory:         true,
		OmitArchitectureDirectory:  true,
		OmitGlobalPtrDirectory:     true,
		OmitTLSDirectory:           true,
		OmitLoadConfigDirectory:    true,
		OmitBoundImportDirectory:   true,
		OmitIATDirectory:           true,
		OmitDelayImportDirectory:   true,
		OmitCLRHeaderDirectory:     true,
		OmitCLRMetadata:            true,
	}
}
