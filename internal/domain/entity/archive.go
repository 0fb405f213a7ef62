package entity

import (
	"net/url"
	"strings"
)

// ArchiveIdentifier is the remote file name of a period's archive,
// e.g. "202509_PEP.zip".
type ArchiveIdentifier string

// NewArchiveIdentifier builds YYYYMM + "_" + suffix + extension.
func NewArchiveIdentifier(p ReportingPeriod, suffix, extension string) ArchiveIdentifier {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	name := p.Compact()
	if suffix != "" {
		name += "_" + suffix
	}
	return ArchiveIdentifier(name + extension)
}

// FileName returns the identifier as a file name.
func (a ArchiveIdentifier) FileName() string {
	return string(a)
}

// Stem strips the extension; it names the extraction directory.
func (a ArchiveIdentifier) Stem() string {
	name := string(a)
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// URL joins the identifier onto baseURL.
func (a ArchiveIdentifier) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(string(a))
}
