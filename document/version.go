package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Version is the format version tag of a document.
type Version string

// Every revision of the document format that can be read.
const (
	Version0_9 Version = "0.9"
	Version1_0 Version = "1.0"
	Version1_1 Version = "1.1"
	Version2_0 Version = "2.0"
	Version2_1 Version = "2.1"
	Version3_0 Version = "3.0"

	// Current is the version written by Encode.
	Current = Version3_0
)

// Format identifies the shape of the encoded pixels.
type Format int

// Pixel formats, one per family of versions.
const (
	FormatRaw Format = iota
	FormatRuns
	FormatPairs
	FormatRects
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatRuns:
		return "rle"
	case FormatPairs:
		return "pairs"
	case FormatRects:
		return "rect"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

type layout int

const (
	layoutLong layout = iota
	layoutShort
)

type revision struct {
	format      Format
	layout      layout
	deserialize func([]byte) (*rawEnvelope, error)
}

var revisions = map[Version]revision{
	Version0_9: {FormatRaw, layoutLong, deserializeLong},
	Version1_0: {FormatRuns, layoutLong, deserializeLong},
	Version1_1: {FormatRuns, layoutLong, deserializeLong},
	Version2_0: {FormatPairs, layoutShort, deserializeShort},
	Version2_1: {FormatPairs, layoutShort, deserializeShort},
	Version3_0: {FormatRects, layoutLong, deserializeLong},
}

// Supported reports whether documents of version v can be read and written.
func (v Version) Supported() bool {
	_, ok := revisions[v]
	return ok
}

// Format returns the pixel format family used by v.
func (v Version) Format() Format {
	return revisions[v].format
}

// Versions returns every supported version in ascending order.
func Versions() []Version {
	versions := make([]Version, 0, len(revisions))
	for v := range revisions {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

// ParseVersion returns the Version for s.
func ParseVersion(s string) (Version, error) {
	v := Version(strings.TrimSpace(s))
	if !v.Supported() {
		return "", formatErrorf("unsupported version %q", s)
	}
	return v, nil
}

// versionTag accepts the version either as a string or as a bare number.
type versionTag string

func (t *versionTag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = versionTag(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = versionTag(n.String())
	return nil
}
