// Package sheets stores writing progress in a Google spreadsheet.
//
// The log range holds rows of [timestamp, author, title, count] and the works
// range holds rows of [title, theme, goal, deadline, status]. Rows that cannot
// be parsed, such as a header row, are skipped when reading.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"writer_digest_bot/internal/domain/progress"

	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
	// RAW stores titles and names exactly as typed, so "001" stays text and
	// "=..." is never evaluated.
	valueInput = "RAW"
)

// Layouts a spreadsheet may render dates in, including rows typed by hand.
var readLayouts = []string{
	timestampLayout,
	dateLayout,
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/01/02",
	"2006/1/2",
}

type Repository struct {
	service       *sheets.Service
	spreadsheetID string
	logRange      string
	worksRange    string
	loc           *time.Location
}

// NewService builds a Sheets client from a service account key. Extra options
// are appended, which lets tests point the client at a local server.
func NewService(ctx context.Context, credentialsJSON string, opts ...option.ClientOption) (*sheets.Service, error) {
	all := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsJSON != "" {
		all = append(all, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	all = append(all, opts...)
	srv, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return srv, nil
}

func NewRepository(service *sheets.Service, spreadsheetID, logRange, worksRange string, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{
		service:       service,
		spreadsheetID: spreadsheetID,
		logRange:      logRange,
		worksRange:    worksRange,
		loc:           loc,
	}
}

func (r *Repository) AppendEntry(ctx context.Context, e *progress.Entry) error {
	row := []interface{}{
		e.LoggedAt.In(r.loc).Format(timestampLayout),
		e.AuthorName,
		e.WorkTitle,
		e.CharCount,
	}
	if err := r.append(ctx, r.logRange, row); err != nil {
		return fmt.Errorf("error appending progress entry: %w", err)
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, filter progress.EntryFilter) ([]*progress.Entry, error) {
	rows, err := r.read(ctx, r.logRange)
	if err != nil {
		return nil, fmt.Errorf("error listing progress entries: %w", err)
	}

	entries := make([]*progress.Entry, 0, len(rows))
	for _, row := range rows {
		e, ok := r.parseEntry(row)
		if !ok || !filter.Match(*e) {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Repository) AppendWork(ctx context.Context, w *progress.Work) error {
	row := []interface{}{
		w.Title,
		w.Theme,
		w.GoalCount,
		w.Deadline.In(r.loc).Format(dateLayout),
		w.Status,
	}
	if err := r.append(ctx, r.worksRange, row); err != nil {
		return fmt.Errorf("error appending work: %w", err)
	}
	return nil
}

func (r *Repository) FindWork(ctx context.Context, title string) (*progress.Work, error) {
	rows, err := r.read(ctx, r.worksRange)
	if err != nil {
		return nil, fmt.Errorf("error getting work by title: %w", err)
	}
	for _, row := range rows {
		w, ok := r.parseWork(row)
		if ok && w.Title == title {
			return w, nil
		}
	}
	return nil, progress.ErrWorkNotFound
}

func (r *Repository) append(ctx context.Context, rng string, row []interface{}) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := r.service.Spreadsheets.Values.Append(r.spreadsheetID, rng, vr).
		ValueInputOption(valueInput).
		Context(ctx).
		Do()
	return err
}

func (r *Repository) read(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (r *Repository) parseEntry(row []interface{}) (*progress.Entry, bool) {
	if len(row) < 4 {
		return nil, false
	}
	count, err := toInt(row[3])
	if err != nil {
		return nil, false
	}
	// A timestamp the sheet reformatted beyond recognition does not drop the row.
	loggedAt, _ := r.parseTime(row[0])
	return &progress.Entry{
		LoggedAt:   loggedAt,
		AuthorName: cast.ToString(row[1]),
		WorkTitle:  cast.ToString(row[2]),
		CharCount:  count,
	}, true
}

func (r *Repository) parseWork(row []interface{}) (*progress.Work, bool) {
	if len(row) < 4 {
		return nil, false
	}
	goal, err := toInt(row[2])
	if err != nil {
		return nil, false
	}
	deadline, err := r.parseTime(row[3])
	if err != nil {
		return nil, false
	}
	w := &progress.Work{
		Title:     cast.ToString(row[0]),
		Theme:     cast.ToString(row[1]),
		GoalCount: goal,
		Deadline:  deadline,
	}
	if len(row) > 4 {
		w.Status = cast.ToString(row[4])
	}
	return w, true
}

func (r *Repository) parseTime(v interface{}) (time.Time, error) {
	s := strings.TrimSpace(cast.ToString(v))
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, r.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// toInt accepts numbers and decimal strings, including thousands separators.
func toInt(v interface{}) (int, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			return 0, fmt.Errorf("empty cell")
		}
		return strconv.Atoi(s)
	}
	return cast.ToIntE(v)
}
