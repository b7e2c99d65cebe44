// Package hostinfo describes the machine a benchmark ran on.
package hostinfo

import (
	"os"
	"runtime"
	"sort"
)

// Host is the machine description embedded in reports.
type Host struct {
	Hostname   string   `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	OS         string   `json:"os" yaml:"os"`
	Arch       string   `json:"arch" yaml:"arch"`
	CPUs       int      `json:"cpus" yaml:"cpus"`
	GOMAXPROCS int      `json:"gomaxprocs" yaml:"gomaxprocs"`
	GoVersion  string   `json:"go_version" yaml:"go_version"`
	ISA        string   `json:"isa" yaml:"isa"`
	Features   []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Detect returns the description of the current process' host.
func Detect() Host {
	name, _ := os.Hostname()
	feats := features()
	sort.Strings(feats)
	return Host{
		Hostname:   name,
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		GoVersion:  runtime.Version(),
		ISA:        bestISA(feats),
		Features:   feats,
	}
}

// HasFeature reports whether the named feature was detected.
func (h Host) HasFeature(name string) bool {
	i := sort.SearchStrings(h.Features, name)
	return i < len(h.Features) && h.Features[i] == name
}

// bestISA names the widest vector extension available, "generic" if none.
func bestISA(feats []string) string {
	has := func(name string) bool {
		i := sort.SearchStrings(feats, name)
		return i < len(feats) && feats[i] == name
	}
	switch {
	case has("avx512f") && has("avx512bw"):
		return "avx512"
	case has("avx2") && has("fma"):
		return "avx2"
	case has("sve2") && runtime.GOOS != "darwin":
		// Apple silicon reports SVE2 but NEON is faster there.
		return "sve2"
	case has("asimd"):
		return "neon"
	default:
		return "generic"
	}
}
