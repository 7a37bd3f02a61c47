package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// Row is one parsed line of a training-log CSV export.
type Row struct {
	Date      time.Time
	Exercise  string
	SetNumber int
	SetType   models.SetType
	WeightKg  float64
	Reps      int
	RIR       *float64
}

// ParseCSV reads a training-log export. The header row names the columns;
// date, exercise, weight_kg, and reps are required, set_number, set_type,
// and rir are optional. Set numbers left blank are assigned per exercise
// and set type within each date, in file order.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "exercise", "weight_kg", "reps"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	// counters assigns set numbers when the column is absent or blank
	type counterKey struct {
		date     string
		exercise string
		setType  models.SetType
	}
	counters := map[counterKey]int{}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		date, err := parseDate(field("date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		exercise := field("exercise")
		if exercise == "" {
			return nil, fmt.Errorf("line %d: exercise is empty", line)
		}
		weight, err := strconv.ParseFloat(field("weight_kg"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: weight_kg: %w", line, err)
		}
		reps, err := strconv.Atoi(field("reps"))
		if err != nil {
			return nil, fmt.Errorf("line %d: reps: %w", line, err)
		}

		setType := models.SetTypeWork
		if s := field("set_type"); s != "" {
			setType = models.SetType(strings.ToLower(s))
		}

		row := Row{
			Date:     date,
			Exercise: exercise,
			SetType:  setType,
			WeightKg: weight,
			Reps:     reps,
		}

		if s := field("set_number"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: set_number: %w", line, err)
			}
			row.SetNumber = n
		} else {
			key := counterKey{date.Format("2006-01-02"), exercise, setType}
			counters[key]++
			row.SetNumber = counters[key]
		}

		if s := field("rir"); s != "" {
			rir, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: rir: %w", line, err)
			}
			row.RIR = &rir
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// sessionGroup is one day's worth of rows, imported as a single session.
type sessionGroup struct {
	Date time.Time
	Rows []Row
}

// groupSessions buckets rows by calendar day, oldest first, preserving
// file order within a day.
func groupSessions(rows []Row) []sessionGroup {
	byDay := map[string]*sessionGroup{}
	var order []string
	for _, row := range rows {
		day := row.Date.Format("2006-01-02")
		g, ok := byDay[day]
		if !ok {
			g = &sessionGroup{Date: row.Date}
			byDay[day] = g
			order = append(order, day)
		}
		g.Rows = append(g.Rows, row)
	}

	out := make([]sessionGroup, 0, len(order))
	for _, day := range order {
		out = append(out, *byDay[day])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
