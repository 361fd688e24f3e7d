// Package batch converts a directory of session sources, pairing each one with
// a proxy from a line-oriented proxies file.
//
// Entries are the directory's children in name order, zipped with the proxy
// lines; the shorter list decides how many entries there are. Conversions run
// concurrently up to a worker limit and the first failure aborts the batch.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/tgsession"
)

// DefaultWorkers is the worker limit used when Options.Workers is not set.
const DefaultWorkers = 5

// Converter is the part of tgsession.Converter a batch needs.
type Converter interface {
	ConvertFormat(ctx context.Context, input string) (tgsession.Format, []byte, error)
}

// Entry is one session source and the proxy assigned to it.
type Entry struct {
	Path  string
	Proxy string
}

// Credentials is one converted entry.
type Credentials struct {
	Path    string
	Format  tgsession.Format
	Session []byte
	Proxy   string
}

type Options struct {
	Workers int
}

// FromDirectory pairs sessionsDir with proxiesPath and converts every entry.
func FromDirectory(ctx context.Context, conv Converter, sessionsDir, proxiesPath string, opts Options) ([]Credentials, error) {
	entries, err := Pair(sessionsDir, proxiesPath)
	if err != nil {
		return nil, err
	}
	return Run(ctx, conv, entries, opts)
}

// Pair lists sessionsDir and zips it with the lines of proxiesPath.
func Pair(sessionsDir, proxiesPath string) ([]Entry, error) {
	proxies, err := ReadProxies(proxiesPath)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	n := min(len(names), len(proxies))
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{
			Path:  filepath.Join(sessionsDir, names[i]),
			Proxy: proxies[i],
		}
	}
	return entries, nil
}

// ReadProxies returns the lines of path after trimming surrounding
// whitespace from the file. An empty file has no proxies.
func ReadProxies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read proxies: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines, nil
}

// Run converts entries with at most opts.Workers conversions in flight. The
// result keeps the order of entries.
func Run(ctx context.Context, conv Converter, entries []Entry, opts Options) ([]Credentials, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := zerolog.Ctx(ctx)

	out := make([]Credentials, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, data, err := conv.ConvertFormat(gctx, e.Path)
			if err != nil {
				return fmt.Errorf("convert %s: %w", e.Path, err)
			}
			log.Debug().Str("path", e.Path).Stringer("format", f).Msg("batch entry converted")
			out[i] = Credentials{Path: e.Path, Format: f, Session: data, Proxy: e.Proxy}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Int("entries", len(entries)).Msg("batch aborted")
		return nil, err
	}
	return out, nil
}
