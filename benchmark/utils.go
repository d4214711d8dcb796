package benchmark

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"path"
	"path/filepath"
	"time"
)

const (
	// nameSpace bounds the random numeral that keeps object keys and
	// downloaded file names apart.
	nameSpace = 1000

	// maxDownloadNameLen keeps the tail of long URL basenames.
	maxDownloadNameLen = 40
)

// Clock returns the current wall-clock time.
type Clock func() time.Time

// NameGenerator produces object keys and download file names. It is not safe
// for concurrent use.
type NameGenerator struct {
	rnd *rand.Rand
}

// NewNameGenerator returns a generator seeded from the runtime's random source.
func NewNameGenerator() *NameGenerator {
	return NewSeededNameGenerator(rand.Uint64(), rand.Uint64())
}

// NewSeededNameGenerator returns a deterministic generator.
func NewSeededNameGenerator(seed1, seed2 uint64) *NameGenerator {
	return &NameGenerator{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (g *NameGenerator) numeral() int {
	return g.rnd.IntN(nameSpace) + 1
}

// ObjectKey creates the destination key for an upload of localPath.
func (g *NameGenerator) ObjectKey(localPath string) string {
	return fmt.Sprintf("tests-%d-%s", g.numeral(), filepath.Base(localPath))
}

// DownloadFileName creates the local file name for a download of rawURL.
func (g *NameGenerator) DownloadFileName(rawURL string) string {
	return fmt.Sprintf("test-%d%s", g.numeral(), urlBaseName(rawURL))
}

// urlBaseName is the last path element of rawURL, cut to its last
// maxDownloadNameLen characters.
func urlBaseName(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = "download"
	}

	runes := []rune(name)
	if len(runes) > maxDownloadNameLen {
		name = string(runes[len(runes)-maxDownloadNameLen:])
	}
	return name
}
