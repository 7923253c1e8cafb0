// Package vdir provides a uniform read-only view over the four places a
// semantic convention registry can live: a local folder, a local archive, a
// remote archive, or a git repository.
package vdir

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Directory is a read-only, path-addressable view over a registry's files.
type Directory interface {
	// Root identifies the directory for diagnostics (e.g. the path or URL
	// it was opened from).
	Root() string

	// AllFiles returns every file path relative to Root, in no particular
	// order.
	AllFiles(ctx context.Context) ([]string, error)

	// LoadFile reads relPath relative to Root. found is false (with a nil
	// error) when the path does not exist, or when it would resolve
	// outside the directory — path traversal is never an error, only a
	// miss.
	LoadFile(ctx context.Context, relPath string) (content []byte, found bool, err error)

	// Close releases any resources (temp directories, clones) backing this
	// Directory.
	Close() error
}

// Source is a parsed registry path, one of the four variants the grammar in
// §6 describes: source[@tag][[sub_folder]].
type Source struct {
	Kind      SourceKind
	Path      string // local path, for LocalFolder/LocalArchive
	URL       string // URL, for RemoteArchive/GitRepo
	Tag       string // for GitRepo only
	SubFolder string
}

// SourceKind discriminates the four virtual directory backends.
type SourceKind string

const (
	KindLocalFolder  SourceKind = "local_folder"
	KindLocalArchive SourceKind = "local_archive"
	KindRemoteArchive SourceKind = "remote_archive"
	KindGitRepo      SourceKind = "git_repo"
)

// registryPathRe parses "source", "source@tag", "source[sub_folder]", and
// "source@tag[sub_folder]".
var registryPathRe = regexp.MustCompile(`^(?P<source>.+?)(?:@(?P<tag>[^\[\]]+))?(?:\[(?P<sub_folder>.+)\])?$`)

// ParseRegistryPath parses a registry path string per the grammar in §6:
// a filesystem path, an http(s):// URL, a .zip/.tar.gz path or URL, or a
// .git-suffixed URL, with optional @tag and [sub_folder] suffixes.
func ParseRegistryPath(s string) (Source, error) {
	m := registryPathRe.FindStringSubmatch(s)
	if m == nil {
		return Source{}, fmt.Errorf("invalid registry path %q", s)
	}
	groups := make(map[string]string, len(m))
	for i, name := range registryPathRe.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		groups[name] = m[i]
	}

	source := groups["source"]
	tag := groups["tag"]
	subFolder := groups["sub_folder"]
	if source == "" {
		return Source{}, fmt.Errorf("invalid registry path %q: no local path or URL found", s)
	}

	isHTTP := strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
	isArchive := strings.HasSuffix(source, ".zip") || strings.HasSuffix(source, ".tar.gz")

	switch {
	case isHTTP && isArchive:
		return Source{Kind: KindRemoteArchive, URL: source, SubFolder: subFolder}, nil
	case isHTTP:
		return Source{Kind: KindGitRepo, URL: source, Tag: tag, SubFolder: subFolder}, nil
	case strings.HasSuffix(source, ".git"):
		return Source{Kind: KindGitRepo, URL: source, Tag: tag, SubFolder: subFolder}, nil
	case isArchive:
		return Source{Kind: KindLocalArchive, Path: source, SubFolder: subFolder}, nil
	default:
		return Source{Kind: KindLocalFolder, Path: source}, nil
	}
}

// String renders a Source back into the grammar it was parsed from.
func (s Source) String() string {
	var base string
	switch s.Kind {
	case KindLocalFolder, KindLocalArchive:
		base = s.Path
	default:
		base = s.URL
	}
	if s.Tag != "" {
		base += "@" + s.Tag
	}
	if s.SubFolder != "" {
		base += "[" + s.SubFolder + "]"
	}
	return base
}

// Open resolves a Source into a Directory, dispatching to the appropriate
// backend constructor.
func Open(ctx context.Context, s Source) (Directory, error) {
	switch s.Kind {
	case KindLocalFolder:
		return NewLocalFolder(s.Path)
	case KindLocalArchive:
		return NewLocalArchive(ctx, s.Path, s.SubFolder)
	case KindRemoteArchive:
		return NewRemoteArchive(ctx, s.URL, s.SubFolder)
	case KindGitRepo:
		return NewGitRepo(ctx, s.URL, s.Tag, s.SubFolder)
	default:
		return nil, fmt.Errorf("unknown registry source kind %q", s.Kind)
	}
}
