// Package dataset loads the four campaign tables from CSV and caches the default set.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"influencerdash/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// LoadFiles reads the four dataset files. Every entity must have a path.
func LoadFiles(ctx context.Context, files map[domain.Entity]string) (*domain.Tables, error) {
	for _, e := range domain.Entities {
		path, ok := files[e]
		if !ok || path == "" {
			return nil, &DataLoadError{Entity: e, Source: SourceDefault, Err: ErrMissingFile}
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("%w: %v", ErrMissingFile, err)
			}
			return nil, &DataLoadError{Entity: e, Source: SourceDefault, Path: path, Err: err}
		}
	}

	return load(ctx, SourceDefault, func(e domain.Entity) (io.ReadCloser, string, error) {
		f, err := os.Open(files[e])
		return f, files[e], err
	})
}

// LoadReaders parses four in-memory files, typically an upload.
// Names are used for error messages only and may be empty.
func LoadReaders(ctx context.Context, source string, readers map[domain.Entity]io.Reader, names map[domain.Entity]string) (*domain.Tables, error) {
	for _, e := range domain.Entities {
		if readers[e] == nil {
			return nil, &DataLoadError{Entity: e, Source: source, Err: ErrMissingFile}
		}
	}

	return load(ctx, source, func(e domain.Entity) (io.ReadCloser, string, error) {
		return io.NopCloser(readers[e]), names[e], nil
	})
}

type opener func(e domain.Entity) (io.ReadCloser, string, error)

// load parses the four tables concurrently. Either all four parse or the
// first failure is returned and nothing is kept.
func load(ctx context.Context, source string, open opener) (*domain.Tables, error) {
	t := &domain.Tables{}
	g, ctx := errgroup.WithContext(ctx)

	for _, e := range domain.Entities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc, name, err := open(e)
			if err != nil {
				return &DataLoadError{Entity: e, Source: source, Path: name, Err: err}
			}
			defer rc.Close()
			// each goroutine writes a distinct field of t
			return parseEntity(source, name, e, rc, t)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseEntity(source, name string, e domain.Entity, r io.Reader, t *domain.Tables) error {
	fail := func(row int, column string, err error) error {
		return &DataLoadError{Entity: e, Source: source, Path: name, Row: row, Column: column, Err: err}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("file is empty")
		}
		return fail(0, "", fmt.Errorf("failed to read header: %w", err))
	}

	index, err := headerIndex(e, header)
	if err != nil {
		return fail(0, "", err)
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(row, "", fmt.Errorf("failed to read row: %w", err))
		}
		if len(record) != len(header) {
			return fail(row, "", fmt.Errorf("expected %d fields, got %d", len(header), len(record)))
		}

		c := &cells{record: record, index: index}
		switch e {
		case domain.EntityInfluencers:
			v := domain.Influencer{
				ID:        c.int("id"),
				Name:      c.str("name"),
				Category:  c.str("category"),
				Gender:    c.str("gender"),
				Followers: c.intMin("followers", 0),
				Platform:  c.str("platform"),
			}
			t.Influencers = append(t.Influencers, v)
		case domain.EntityPosts:
			v := domain.Post{
				InfluencerID: c.int("influencer_id"),
				Platform:     c.str("platform"),
				Date:         c.date("date"),
				URL:          c.str("url"),
				Caption:      c.str("caption"),
				Reach:        c.intMin("reach", 0),
				Likes:        c.intMin("likes", 0),
				Comments:     c.intMin("comments", 0),
			}
			t.Posts = append(t.Posts, v)
		case domain.EntityTracking:
			v := domain.TrackingRecord{
				Source:       c.str("source"),
				Campaign:     c.str("campaign"),
				InfluencerID: c.int("influencer_id"),
				UserID:       c.int("user_id"),
				Product:      c.str("product"),
				Date:         c.date("date"),
				Orders:       c.intMin("orders", 1),
				Revenue:      c.floatMin("revenue", 0),
			}
			t.Tracking = append(t.Tracking, v)
		case domain.EntityPayouts:
			v := domain.Payout{
				InfluencerID: c.int("influencer_id"),
				Basis:        c.basis("basis"),
				Rate:         c.positive("rate"),
				Orders:       c.intMin("orders", 0),
				TotalPayout:  c.floatMin("total_payout", 0),
			}
			t.Payouts = append(t.Payouts, v)
		}

		if c.err != nil {
			return fail(row, c.errColumn, c.err)
		}
	}

	return nil
}

// headerIndex maps column names to positions and checks the column set
func headerIndex(e domain.Entity, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	var unexpected []string
	expected := make(map[string]bool)
	for _, col := range e.Columns() {
		expected[col] = true
	}

	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		col = strings.TrimSpace(col)
		if !expected[col] {
			unexpected = append(unexpected, col)
			continue
		}
		if _, dup := index[col]; dup {
			unexpected = append(unexpected, col)
			continue
		}
		index[col] = i
	}

	var missing []string
	for _, col := range e.Columns() {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 || len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, &SchemaMismatchError{Entity: e, Missing: missing, Unexpected: unexpected}
	}
	return index, nil
}

// cells reads typed values from one record, keeping the first parse error
type cells struct {
	record    []string
	index     map[string]int
	err       error
	errColumn string
}

func (c *cells) str(col string) string {
	return strings.TrimSpace(c.record[c.index[col]])
}

func (c *cells) setErr(col, value, kind string, err error) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %q is not a valid %s: %v", ErrInvalidValue, value, kind, err)
		c.errColumn = col
	}
}

func (c *cells) int(col string) int {
	s := c.str(col)
	v, err := strconv.Atoi(s)
	if err != nil {
		// whole floats such as "12.0" are accepted
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			c.setErr(col, s, "integer", err)
			return 0
		}
		v = int(f)
	}
	return v
}

func (c *cells) float(col string) float64 {
	s := c.str(col)
	v, err := strconv.ParseFloat(s, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = errors.New("not finite")
	}
	if err != nil {
		c.setErr(col, s, "number", err)
	}
	return v
}

// intMin parses an integer column that must be at least lo
func (c *cells) intMin(col string, lo int) int {
	v := c.int(col)
	if c.err == nil && v < lo {
		c.setErr(col, c.str(col), "count", fmt.Errorf("must be at least %d", lo))
	}
	return v
}

// floatMin parses a number column that must be at least lo
func (c *cells) floatMin(col string, lo float64) float64 {
	v := c.float(col)
	if c.err == nil && v < lo {
		c.setErr(col, c.str(col), "amount", fmt.Errorf("must be at least %g", lo))
	}
	return v
}

// positive parses a number column that must be greater than zero
func (c *cells) positive(col string) float64 {
	v := c.float(col)
	if c.err == nil && v <= 0 {
		c.setErr(col, c.str(col), "amount", errors.New("must be greater than 0"))
	}
	return v
}

func (c *cells) date(col string) domain.Date {
	s := c.str(col)
	d, err := domain.ParseDate(s)
	if err != nil {
		c.setErr(col, s, "date", err)
	}
	return d
}

func (c *cells) basis(col string) domain.PayoutBasis {
	s := c.str(col)
	b := domain.PayoutBasis(s)
	if !b.Valid() {
		c.setErr(col, s, "payout basis", fmt.Errorf("want %q or %q", domain.PayoutBasisPost, domain.PayoutBasisOrder))
	}
	return b
}
