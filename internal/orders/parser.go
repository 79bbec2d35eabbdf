package orders

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/in-nis/lessonboard/internal/models"
)

// Column names of the booking export. group_size actually carries the group
// type (privát, malá skupina, velká skupina).
const (
	ColDate        = "date_lesson"
	ColStart       = "timestamp_start_lesson"
	ColEnd         = "timestamp_end_lesson"
	ColLevel       = "level"
	ColGroupType   = "group_size"
	ColSponsor     = "name_sponsor"
	ColParticipant = "name_participant"
	ColLanguage    = "language"
	ColLocation    = "location_meeting"
	ColOrderID     = "id_order"
	ColBookingID   = "booking_id"
)

var RequiredColumns = []string{
	ColDate,
	ColStart,
	ColEnd,
	ColLevel,
	ColGroupType,
	ColSponsor,
	ColParticipant,
	ColLanguage,
	ColLocation,
}

// DefaultPrivateGroupTypes are the group_size values that mark a private lesson.
var DefaultPrivateGroupTypes = []string{"privát", "private"}

// SchemaError is returned when the header lacks required columns.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("orders: missing required columns: %s", strings.Join(e.Missing, ", "))
}

type Options struct {
	PrivateGroupTypes []string
}

func (o Options) isPrivate(groupType string) bool {
	types := o.PrivateGroupTypes
	if len(types) == 0 {
		types = DefaultPrivateGroupTypes
	}
	for _, t := range types {
		if strings.EqualFold(groupType, t) {
			return true
		}
	}
	return false
}

// RawRecord is one row of the export, keyed by column name.
type RawRecord map[string]string

func (r RawRecord) get(col string) string {
	return strings.TrimSpace(r[col])
}

// Result is the outcome of parsing one export.
type Result struct {
	Lessons  []models.Lesson
	Rows     int
	Valid    int
	Filtered int
	Reasons  map[string]int
	Encoding string
}

// ParseTSV decodes a tab-separated export and groups it into lessons.
func ParseTSV(data []byte, opts Options) (Result, error) {
	decoded, encoding, err := Decode(data)
	if err != nil {
		return Result{}, err
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, &SchemaError{Missing: append([]string(nil), RequiredColumns...)}
		}
		return Result{}, fmt.Errorf("orders: read header: %w", err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("orders: read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, row)
	}

	res, err := ParseTable(header, rows, opts)
	if err != nil {
		return Result{}, err
	}
	res.Encoding = encoding
	return res, nil
}

// ParseTable groups an already split table (header plus data rows).
func ParseTable(header []string, rows [][]string, opts Options) (Result, error) {
	records, err := toRecords(header, rows)
	if err != nil {
		return Result{}, err
	}

	valid, reasons := Filter(records)
	res := Result{
		Lessons:  Group(valid, opts),
		Rows:     len(records),
		Valid:    len(valid),
		Filtered: len(records) - len(valid),
		Reasons:  reasons,
	}
	return res, nil
}

func toRecords(header []string, rows [][]string) ([]RawRecord, error) {
	cols := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[i] = h
		present[h] = true
	}

	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		rec := make(RawRecord, len(cols))
		for i, c := range cols {
			if i < len(row) {
				rec[c] = row[i]
			} else {
				rec[c] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Filter drops rows carrying the 1970 placeholder date or lacking a
// required field. It returns the kept rows and drop counts per reason.
func Filter(records []RawRecord) ([]RawRecord, map[string]int) {
	valid := make([]RawRecord, 0, len(records))
	reasons := map[string]int{}

	for _, rec := range records {
		if reason := invalidReason(rec); reason != "" {
			reasons[reason]++
			continue
		}
		valid = append(valid, rec)
	}
	return valid, reasons
}

func invalidReason(rec RawRecord) string {
	if strings.Contains(rec[ColDate], "1970") || strings.Contains(rec[ColStart], "1970") {
		return "sentinel_1970"
	}
	for _, c := range RequiredColumns {
		if rec.get(c) == "" {
			return "missing_" + c
		}
	}
	return ""
}
