// Package fetch downloads structure files from the PDB and PubChem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/chazu/molmesh/pkg/logging"
)

var (
	// ErrBadQuery is returned for queries that are not "pdb:XXXX" or "cid:N".
	ErrBadQuery = errors.New("fetch: bad query")
	// ErrStatus is returned when the server answers with a non-2xx status.
	ErrStatus = errors.New("fetch: unexpected status")
)

// Source identifies the database a query targets.
type Source int

const (
	SourcePDB Source = iota
	SourcePubChem
)

// Format returns the file format the source serves.
func (s Source) Format() string {
	switch s {
	case SourcePDB:
		return "pdb"
	case SourcePubChem:
		return "sdf"
	default:
		return "unknown"
	}
}

var (
	pdbID = regexp.MustCompile(`^[1-9][A-Z0-9]{3}$`)
	cid   = regexp.MustCompile(`^[1-9][0-9]*$`)
)

// Query is a parsed structure reference.
type Query struct {
	Source Source
	ID     string
}

func (q Query) String() string {
	switch q.Source {
	case SourcePDB:
		return "pdb:" + q.ID
	default:
		return "cid:" + q.ID
	}
}

// ParseQuery parses "pdb:XXXX" (four characters, the first 1-9; case is
// folded to upper) or "cid:N" (a positive decimal compound id).
func ParseQuery(s string) (Query, error) {
	prefix, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Query{}, fmt.Errorf("%w: %q", ErrBadQuery, s)
	}
	switch strings.ToLower(prefix) {
	case "pdb":
		id = strings.ToUpper(id)
		if !pdbID.MatchString(id) {
			return Query{}, fmt.Errorf("%w: wrong PDB id %q", ErrBadQuery, id)
		}
		return Query{Source: SourcePDB, ID: id}, nil
	case "cid":
		if !cid.MatchString(id) {
			return Query{}, fmt.Errorf("%w: wrong compound id %q", ErrBadQuery, id)
		}
		return Query{Source: SourcePubChem, ID: id}, nil
	}
	return Query{}, fmt.Errorf("%w: unknown source %q", ErrBadQuery, prefix)
}

// Default service roots.
const (
	DefaultPDBBase     = "https://files.rcsb.org/download"
	DefaultPubChemBase = "https://pubchem.ncbi.nlm.nih.gov/rest/pug/compound/cid"
)

// Fetcher retrieves structure files. The zero value uses the public
// services and http.DefaultClient.
type Fetcher struct {
	Client      *http.Client
	PDBBase     string
	PubChemBase string
	// MaxBytes caps the response size; 0 means 64 MiB.
	MaxBytes int64
}

const defaultMaxBytes = 64 << 20

// URL returns the download address for q.
func (f *Fetcher) URL(q Query) string {
	switch q.Source {
	case SourcePDB:
		return orDefault(f.PDBBase, DefaultPDBBase) + "/" + q.ID + ".pdb"
	default:
		return orDefault(f.PubChemBase, DefaultPubChemBase) + "/" + q.ID + "/SDF?record_type=3d"
	}
}

// Fetch downloads the structure file for q.
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]byte, error) {
	url := f.URL(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", q, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: %w", q, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, q, resp.Status)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: %s: read body: %w", q, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("fetch: %s: response exceeds %d bytes", q, limit)
	}
	logging.Logger().Info("structure fetched",
		"query", q.String(), "bytes", len(data), "elapsed", time.Since(start))
	return data, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return strings.TrimRight(s, "/")
}
