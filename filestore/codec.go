package filestore

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	internalstrings "github.com/amonks/tasktracker/internal/strings"
	"github.com/amonks/tasktracker/task"
)

// Header is the first line of every stored file.
const Header = "id,type,name,status,description,duration,start,epic"

const (
	nullField     = "null"
	fieldCount    = 8
	maxLineBytes  = 1024 * 1024
	secondsLayout = "2006-01-02T15:04:05"
)

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Location is the zone start times are written in. It should match the
	// Location used to decode the file. Defaults to time.Local.
	Location *time.Location
}

// Encode writes every task, epic and subtask held by m, in that order, each
// group sorted by id. The header is always written.
func Encode(w io.Writer, m *task.Manager, opts EncodeOptions) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, item := range m.Tasks() {
		if _, err := bw.WriteString(encodeRecord(item, task.KindTask, 0, loc)); err != nil {
			return err
		}
	}
	for _, item := range m.Epics() {
		if _, err := bw.WriteString(encodeRecord(item.Task, task.KindEpic, 0, loc)); err != nil {
			return err
		}
	}
	for _, item := range m.Subtasks() {
		if _, err := bw.WriteString(encodeRecord(item.Task, task.KindSubtask, item.EpicID, loc)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func encodeRecord(t task.Task, kind task.Kind, epicID int64, loc *time.Location) string {
	fields := make([]string, 0, fieldCount)
	fields = append(fields,
		strconv.FormatInt(t.ID, 10),
		string(kind),
		encodeText(t.Title),
	)
	if kind == task.KindEpic {
		fields = append(fields, "", encodeText(t.Description), "", "", "")
		return strings.Join(fields, ",") + "\n"
	}

	status := nullField
	if t.Status != "" {
		status = string(t.Status)
	}
	duration := nullField
	if t.Duration != nil {
		duration = strconv.FormatInt(int64(*t.Duration/time.Minute), 10)
	}
	start := nullField
	if t.StartTime != nil {
		start = t.StartTime.In(loc).Format(task.TimeLayout)
	}
	epic := ""
	if kind == task.KindSubtask {
		epic = strconv.FormatInt(epicID, 10)
	}
	fields = append(fields, status, encodeText(t.Description), duration, start, epic)
	return strings.Join(fields, ",") + "\n"
}

func encodeText(value *string) string {
	if value == nil {
		return nullField
	}
	return strconv.Quote(*value)
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Manager configures the Manager that records are replayed into.
	Manager task.Options

	// Location is used for start times, which are stored without a zone.
	// Defaults to time.Local.
	Location *time.Location
}

// Decode reads a stored file and replays every record through a fresh
// Manager's Update methods, so each record is validated exactly as a live
// update would be. An empty input yields an empty Manager. Any error aborts
// the whole load and is returned as a *FormatError.
func Decode(r io.Reader, opts DecodeOptions) (*task.Manager, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	m := task.NewManager(opts.Manager)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNum := 0
	seen := make(map[int64]int)
	for scanner.Scan() {
		lineNum++
		line := internalstrings.TrimTrailingCarriageReturn(scanner.Text())
		if lineNum == 1 {
			if line != Header {
				return nil, &FormatError{Line: lineNum, Err: fmt.Errorf("%w: got %q", ErrMalformedHeader, line)}
			}
			continue
		}
		if line == "" {
			continue
		}

		rec, err := parseRecord(line, loc)
		if err != nil {
			return nil, &FormatError{Line: lineNum, ID: rec.rawID, Err: err}
		}
		if first, ok := seen[rec.id]; ok {
			return nil, &FormatError{Line: lineNum, ID: rec.rawID, Err: fmt.Errorf("%w: first used on line %d", ErrDuplicateID, first)}
		}
		seen[rec.id] = lineNum

		if err := rec.apply(m); err != nil {
			return nil, &FormatError{Line: lineNum, ID: rec.rawID, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return m, nil
}

type record struct {
	rawID  string
	id     int64
	kind   task.Kind
	task   task.Task
	epicID int64
}

func (rec record) apply(m *task.Manager) error {
	switch rec.kind {
	case task.KindTask:
		return m.UpdateTask(&rec.task)
	case task.KindEpic:
		return m.UpdateEpic(&task.Epic{Task: rec.task})
	default:
		return m.UpdateSubtask(&task.Subtask{Task: rec.task, EpicID: rec.epicID})
	}
}

type field struct {
	value  string
	quoted bool
}

func parseRecord(line string, loc *time.Location) (record, error) {
	var rec record
	fields, err := splitRecord(line)
	if len(fields) > 0 {
		rec.rawID = fields[0].value
	}
	if err != nil {
		return rec, err
	}
	if len(fields) != fieldCount {
		return rec, malformed("expected %d fields, got %d", fieldCount, len(fields))
	}

	id, err := strconv.ParseInt(fields[0].value, 10, 64)
	if err != nil || id <= 0 || fields[0].quoted {
		return rec, malformed("invalid id %q", fields[0].value)
	}
	rec.id = id
	rec.task.ID = id

	rec.kind = task.Kind(fields[1].value)
	if !rec.kind.IsValid() || fields[1].quoted {
		return rec, malformed("invalid type %q", fields[1].value)
	}

	if rec.task.Title, err = decodeText(fields[2], "name"); err != nil {
		return rec, err
	}
	if rec.task.Description, err = decodeText(fields[4], "description"); err != nil {
		return rec, err
	}

	if rec.kind == task.KindEpic {
		for _, i := range []int{3, 5, 6, 7} {
			if fields[i].value != "" || fields[i].quoted {
				return rec, malformed("epic records leave status, duration, start and epic empty")
			}
		}
		return rec, nil
	}

	if fields[3].quoted {
		return rec, malformed("invalid status %q", fields[3].value)
	}
	if fields[3].value != nullField {
		rec.task.Status = task.Status(fields[3].value)
	}
	if rec.task.Duration, err = decodeMinutes(fields[5]); err != nil {
		return rec, err
	}
	if rec.task.StartTime, err = decodeStart(fields[6], loc); err != nil {
		return rec, err
	}

	switch rec.kind {
	case task.KindSubtask:
		epicID, err := strconv.ParseInt(fields[7].value, 10, 64)
		if err != nil || fields[7].quoted {
			return rec, malformed("invalid epic id %q", fields[7].value)
		}
		rec.epicID = epicID
	default:
		if fields[7].value != "" || fields[7].quoted {
			return rec, malformed("only subtasks reference an epic")
		}
	}
	return rec, nil
}

func decodeText(f field, name string) (*string, error) {
	if f.quoted {
		value := f.value
		return &value, nil
	}
	if f.value == nullField {
		return nil, nil
	}
	return nil, malformed("%s must be quoted text or null, got %q", name, f.value)
}

func decodeMinutes(f field) (*time.Duration, error) {
	if f.value == nullField && !f.quoted {
		return nil, nil
	}
	minutes, err := strconv.ParseInt(f.value, 10, 64)
	if err != nil || f.quoted {
		return nil, malformed("invalid duration %q", f.value)
	}
	if minutes > math.MaxInt64/int64(time.Minute) || minutes < math.MinInt64/int64(time.Minute) {
		return nil, malformed("invalid duration %q: out of range", f.value)
	}
	return task.MinutesPtr(minutes), nil
}

func decodeStart(f field, loc *time.Location) (*time.Time, error) {
	if f.value == nullField && !f.quoted {
		return nil, nil
	}
	if f.quoted {
		return nil, malformed("invalid start %q", f.value)
	}
	for _, layout := range []string{task.TimeLayout, secondsLayout} {
		if start, err := time.ParseInLocation(layout, f.value, loc); err == nil {
			return &start, nil
		}
	}
	return nil, malformed("invalid start %q", f.value)
}

// splitRecord splits a line on commas. Quoted fields use Go string syntax,
// so they may contain commas, quotes and escaped newlines.
func splitRecord(line string) ([]field, error) {
	var fields []field
	for i := 0; ; {
		if i < len(line) && line[i] == '"' {
			end, ok := closingQuote(line, i)
			if !ok {
				return fields, malformed("unterminated quoted field at column %d", i+1)
			}
			value, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return fields, malformed("invalid quoted field at column %d: %v", i+1, err)
			}
			fields = append(fields, field{value: value, quoted: true})
			i = end + 1
			if i == len(line) {
				return fields, nil
			}
			if line[i] != ',' {
				return fields, malformed("unexpected %q after quoted field at column %d", line[i], i+1)
			}
			i++
			continue
		}

		next := strings.IndexByte(line[i:], ',')
		if next < 0 {
			return append(fields, field{value: line[i:]}), nil
		}
		fields = append(fields, field{value: line[i : i+next]})
		i += next + 1
	}
}

func closingQuote(line string, open int) (int, bool) {
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}
