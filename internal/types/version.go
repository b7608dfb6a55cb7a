package types

import "strconv"

// Version is a release of a port: the upstream version text interpreted
// under Scheme, plus a port revision that orders repackagings of the
// same upstream text.
type Version struct {
	Text        string        `yaml:"version"`
	Scheme      VersionScheme `yaml:"scheme,omitempty"`
	PortVersion int           `yaml:"port_version,omitempty"`
}

func (v Version) IsZero() bool {
	return v.Text == "" && v.PortVersion == 0
}

func (v Version) String() string {
	if v.PortVersion > 0 {
		return v.Text + "#" + strconv.Itoa(v.PortVersion)
	}
	return v.Text
}
