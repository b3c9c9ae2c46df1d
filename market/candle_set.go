package market

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CandleSet is a dense, time-indexed grid of candles at a fixed timeframe.
// Slots with no source row stay invalid and are skipped by the Iterator.
type CandleSet struct {
	Instrument string
	Start      int64 // unix seconds for candle open
	Timeframe  int32
	Source     string
	Candles    []Candle
	Valid      []uint64

	Filepath   string
	Gaps       []Gap
	Duplicates int
	BadLines   int
}

type Gap struct {
	StartIdx int32  // first missing candle index
	Len      int32  // number of missing intervals
	Kind     string // weekend vs suspicious
}

type GapStats struct {
	TotalBars      int
	PresentBars    int
	MissingBars    int
	GapCount       int
	WeekendGaps    int
	SuspiciousGaps int
	LongestGap     int
	LongestGapKind string
}

type row struct {
	ts int64
	c  Candle
}

// NewCandleSet loads a candle file. Both the HistData/Dukascopy ASCII layout
// ("20250101 170000;o;h;l;c;v", EST without DST) and comma separated
// "time,open,high,low,close[,volume]" (RFC3339 or unix seconds) are accepted.
func NewCandleSet(fname string, timeframe int32) (*CandleSet, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cs, err := ReadCandleSet(f, timeframe)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	cs.Filepath = fname
	return cs, nil
}

// ReadCandleSet builds a CandleSet from r. Timestamps are floored onto the
// timeframe grid; later duplicates of a slot are dropped (keep-first).
func ReadCandleSet(r io.Reader, timeframe int32) (*CandleSet, error) {
	if timeframe <= 0 {
		timeframe = 3600
	}
	cs := &CandleSet{
		Timeframe: timeframe,
		Source:    "csv",
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []row
	var minTs, maxTs int64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isHeader(line) {
			continue
		}
		ts, c, err := ParseCandleLine(line)
		if err != nil {
			cs.BadLines++
			continue
		}
		if len(rows) == 0 || ts < minTs {
			minTs = ts
		}
		if len(rows) == 0 || ts > maxTs {
			maxTs = ts
		}
		rows = append(rows, row{ts: ts, c: c})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid candles found")
	}

	tf := int64(timeframe)
	cs.Start = (minTs / tf) * tf
	end := (maxTs / tf) * tf
	n := int((end-cs.Start)/tf) + 1
	if n > maxGridSlots(len(rows)) {
		return nil, fmt.Errorf("%d rows span %d %ds slots, too sparse to load", len(rows), n, timeframe)
	}

	cs.Candles = make([]Candle, n)
	cs.Valid = make([]uint64, (n+63)/64)

	for _, rw := range rows {
		idx := int((rw.ts - cs.Start) / tf)
		if bitIsSet(cs.Valid, idx) {
			cs.Duplicates++
			continue
		}
		rw.c.Time = cs.Time(idx)
		cs.Candles[idx] = rw.c
		bitSet(cs.Valid, idx)
	}

	cs.BuildGapReport()
	return cs, nil
}

// A grid may hold at most this many slots per source row, and always at
// least a week of M1 bars.
const (
	maxSlotsPerRow = 1000
	minGridSlots   = 7 * 24 * 60
)

func maxGridSlots(rows int) int {
	return max(rows*maxSlotsPerRow, minGridSlots)
}

func isHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.HasPrefix(l, "time") || strings.HasPrefix(l, "date")
}

// ParseCandleLine parses one candle row in either supported layout and
// returns its unix timestamp.
func ParseCandleLine(line string) (int64, Candle, error) {
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	parts := strings.Split(line, sep)
	if len(parts) < 5 {
		return 0, Candle{}, fmt.Errorf("need at least 5 columns, got %d", len(parts))
	}

	var ts int64
	var err error
	if sep == ";" {
		ts, err = parseToUnix(parts[0])
	} else {
		ts, err = parseTime(parts[0])
	}
	if err != nil {
		return 0, Candle{}, err
	}
	if err := checkPlausible(ts); err != nil {
		return 0, Candle{}, err
	}

	prices := make([]decimal.Decimal, 4)
	for i := 1; i < 5; i++ {
		if prices[i-1], err = decimal.NewFromString(strings.TrimSpace(parts[i])); err != nil {
			return 0, Candle{}, fmt.Errorf("bad price %q: %w", parts[i], err)
		}
	}
	c := Candle{
		Time:  time.Unix(ts, 0).UTC(),
		Open:  prices[0],
		High:  prices[1],
		Low:   prices[2],
		Close: prices[3],
	}
	if len(parts) > 5 {
		if v, err := decimal.NewFromString(strings.TrimSpace(parts[5])); err == nil {
			c.Volume = v
		}
	}
	return ts, c, nil
}

func (cs *CandleSet) Time(idx int) time.Time {
	return time.Unix(cs.Start+int64(idx)*int64(cs.Timeframe), 0).UTC()
}

func (cs *CandleSet) BuildGapReport() {
	cs.Gaps = cs.Gaps[:0]

	n := len(cs.Candles)
	i := 0
	for i < n {
		if bitIsSet(cs.Valid, i) {
			i++
			continue
		}

		// start of gap
		start := i
		for i < n && !bitIsSet(cs.Valid, i) {
			i++
		}
		length := i - start

		cs.Gaps = append(cs.Gaps, Gap{
			StartIdx: int32(start),
			Len:      int32(length),
			Kind:     cs.classifyGap(start, length),
		})
	}
}

func (cs *CandleSet) classifyGap(startIdx, length int) string {
	tf := int64(cs.Timeframe)

	t := cs.Time(startIdx)
	wd := t.Weekday()

	gapMinutes := int64(length) * tf / 60

	// Weekend-ish if gap >= 24h and starts Fri/Sat/Sun (UTC heuristic)
	if gapMinutes >= 60*24 {
		if wd == time.Friday || wd == time.Saturday || wd == time.Sunday {
			return "weekend"
		}
		return "suspicious"
	}

	if gapMinutes >= 10 && length > 1 {
		return "suspicious"
	}
	return "minor"
}

func (cs *CandleSet) Stats() GapStats {
	var s GapStats

	n := len(cs.Candles)
	s.TotalBars = n
	for i := 0; i < n; i++ {
		if bitIsSet(cs.Valid, i) {
			s.PresentBars++
		}
	}
	s.MissingBars = n - s.PresentBars

	for _, g := range cs.Gaps {
		s.GapCount++
		if int(g.Len) > s.LongestGap {
			s.LongestGap = int(g.Len)
			s.LongestGapKind = g.Kind
		}
		switch g.Kind {
		case "weekend":
			s.WeekendGaps++
		case "suspicious":
			s.SuspiciousGaps++
		}
	}
	return s
}

// Aggregate rolls the set up into a coarser timeframe. A bucket is valid only
// when at least minValid source bars are present.
func (cs *CandleSet) Aggregate(tfOut int32, minValid int) (*CandleSet, error) {
	if tfOut <= cs.Timeframe || tfOut%cs.Timeframe != 0 {
		return nil, fmt.Errorf("cannot aggregate %ds into %ds", cs.Timeframe, tfOut)
	}
	per := int(tfOut / cs.Timeframe)
	if minValid < 1 {
		minValid = 1
	}
	if minValid > per {
		minValid = per
	}

	tfIn := int64(cs.Timeframe)
	out := int64(tfOut)

	start := (cs.Start / out) * out
	end := cs.Start + int64(len(cs.Candles)-1)*tfIn
	nOut := int((end-start)/out) + 1

	agg := &CandleSet{
		Instrument: cs.Instrument,
		Start:      start,
		Timeframe:  tfOut,
		Source:     cs.Source,
		Filepath:   cs.Filepath,
		Candles:    make([]Candle, nOut),
		Valid:      make([]uint64, (nOut+63)/64),
	}

	for h := 0; h < nOut; h++ {
		bucketStart := start + int64(h)*out
		firstIdx := int((bucketStart - cs.Start) / tfIn)

		validCount := 0
		var c Candle
		for m := 0; m < per; m++ {
			idx := firstIdx + m
			if idx < 0 || idx >= len(cs.Candles) || !bitIsSet(cs.Valid, idx) {
				continue
			}
			bar := cs.Candles[idx]
			if validCount == 0 {
				c = Candle{Open: bar.Open, High: bar.High, Low: bar.Low}
			} else {
				if bar.High.GreaterThan(c.High) {
					c.High = bar.High
				}
				if bar.Low.LessThan(c.Low) {
					c.Low = bar.Low
				}
			}
			c.Close = bar.Close
			c.Volume = c.Volume.Add(bar.Volume)
			validCount++
		}

		if validCount >= minValid {
			c.Time = agg.Time(h)
			agg.Candles[h] = c
			bitSet(agg.Valid, h)
		}
	}

	agg.BuildGapReport()
	return agg, nil
}

// Closes returns the close of every valid candle in order.
func (cs *CandleSet) Closes() []float64 {
	out := make([]float64, 0, len(cs.Candles))
	it := cs.Iterator()
	for it.Next() {
		out = append(out, it.Candle().CloseFloat())
	}
	return out
}

func (cs *CandleSet) PrintStats(w io.Writer) {
	s := cs.Stats()
	tf, err := SecondsToTFString(cs.Timeframe)
	if err != nil {
		tf = fmt.Sprintf("%ds", cs.Timeframe)
	}

	fmt.Fprintln(w, "---- CandleSet Stats ----")
	if len(cs.Candles) > 0 {
		fmt.Fprintf(w, "Range: %s → %s (%s)\n",
			cs.Time(0).Format(time.RFC3339),
			cs.Time(len(cs.Candles)-1).Format(time.RFC3339), tf)
	}
	fmt.Fprintf(w, "      Total Bars: %d\n", s.TotalBars)
	fmt.Fprintf(w, "    Present Bars: %d\n", s.PresentBars)
	fmt.Fprintf(w, "    Missing Bars: %d\n", s.MissingBars)
	fmt.Fprintf(w, "      Total Gaps: %d\n", s.GapCount)
	fmt.Fprintf(w, "    Weekend Gaps: %d\n", s.WeekendGaps)
	fmt.Fprintf(w, " Suspicious Gaps: %d\n", s.SuspiciousGaps)
	fmt.Fprintf(w, "Longest Gap: %d bars (%s)\n", s.LongestGap, s.LongestGapKind)
	if cs.Duplicates > 0 || cs.BadLines > 0 {
		fmt.Fprintf(w, "Ingest warnings: duplicates=%d badLines=%d\n", cs.Duplicates, cs.BadLines)
	}
	fmt.Fprintln(w, "--------------------------")
}

type Iterator struct {
	cs  *CandleSet
	idx int
}

func (cs *CandleSet) Iterator() *Iterator {
	return &Iterator{
		cs:  cs,
		idx: -1,
	}
}

func (it *Iterator) Next() bool {
	n := len(it.cs.Candles)

	for {
		it.idx++
		if it.idx >= n {
			return false
		}
		if bitIsSet(it.cs.Valid, it.idx) {
			return true
		}
	}
}

func (it *Iterator) Candle() Candle {
	return it.cs.Candles[it.idx]
}

func (it *Iterator) Index() int {
	return it.idx
}

func (it *Iterator) Time() time.Time {
	return it.cs.Time(it.idx)
}
