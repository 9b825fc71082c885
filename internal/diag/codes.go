package diag

import (
	"fmt"
)

// Code identifies one diagnostic check. Codes live in numeric bands per
// pipeline area so IDs stay stable as checks are added:
//
//	1000-1999  SYN  parsing
//	2000-2999  RCT  reactivity analysis
//	4000-4999  IO   file loading / writing
//	5000-5999  PRJ  project manifest
//	6000-6999  OBS  observability
type Code uint16

const (
	UnknownCode Code = 0

	// Parsing (1000-1099)
	SynInfo       Code = 1000
	SynParseError Code = 1001 // source tree contains ERROR nodes

	// Reactivity analysis (2000-2099)
	RctInfo                Code = 2000
	RctNonReactiveMutation Code = 2001 // const binding mutated and rendered
	RctPropsDestructuring  Code = 2002 // component params destructure the props object

	// IO (4000-4099)
	IOInfo      Code = 4000
	IOLoadFile  Code = 4001 // source file could not be read
	IOWriteFile Code = 4002 // output file could not be written

	// Project manifest (5000-5099)
	PrjInfo             Code = 5000
	PrjManifestNotFound Code = 5001 // no impulse.toml up the tree
	PrjManifestInvalid  Code = 5002 // impulse.toml failed to decode or validate
	PrjBadSourceRoot    Code = 5003 // configured src dir missing

	// Observability (6000-6099)
	ObsInfo    Code = 6000
	ObsTimings Code = 6001 // pipeline phase durations, emitted with --timings
)

var codeDescription = map[Code]string{
	UnknownCode:            "unknown diagnostic",
	SynInfo:                "parser note",
	SynParseError:          "source contains syntax errors",
	RctInfo:                "reactivity note",
	RctNonReactiveMutation: "mutation of a non-reactive binding that is rendered in markup",
	RctPropsDestructuring:  "destructured component props defeat lazy property access",
	IOInfo:                 "io note",
	IOLoadFile:             "failed to read source file",
	IOWriteFile:            "failed to write output file",
	PrjInfo:                "project note",
	PrjManifestNotFound:    "project manifest not found",
	PrjManifestInvalid:     "project manifest is invalid",
	PrjBadSourceRoot:       "project source directory does not exist",
	ObsInfo:                "observability note",
	ObsTimings:             "pipeline timings",
}

// codeName holds the public, kebab-case names surfaced in check output and
// editor integrations. Codes without an entry fall back to the numeric ID.
var codeName = map[Code]string{
	SynParseError:          "parse-error",
	RctNonReactiveMutation: "non-reactive-mutation",
	RctPropsDestructuring:  "props-destructuring",
	IOLoadFile:             "load-error",
	IOWriteFile:            "write-error",
	PrjManifestNotFound:    "manifest-not-found",
	PrjManifestInvalid:     "manifest-invalid",
	PrjBadSourceRoot:       "bad-source-root",
	ObsTimings:             "timings",
}

// ID renders the band-prefixed stable identifier, e.g. "RCT2001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RCT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Name returns the public kebab-case name when one exists, else the ID.
func (c Code) Name() string {
	if name, ok := codeName[c]; ok {
		return name
	}
	return c.ID()
}

// Title returns the one-line description of the check.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
