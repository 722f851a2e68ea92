package delimited

// previewRecords bounds how much of the text delimiter detection reads.
const previewRecords = 10

// DetectDelimiter picks the candidate whose field count varies least across
// the first records of body. Candidates averaging fewer than two fields per
// record are not considered. When nothing qualifies it returns
// DefaultDelimiter and false.
func DetectDelimiter(body string, quote rune, lineBreak string, skipEmptyLines bool) (rune, bool) {
	var (
		best      rune
		bestDelta = -1
		bestAvg   float64
	)
	for _, candidate := range Candidates {
		if candidate == quote {
			continue
		}
		t := tokenizer{delim: string(candidate), quote: string(quote), lineBreak: lineBreak}
		records, _ := t.tokenize(body, previewRecords)

		delta, avg := fieldCountSpread(records, skipEmptyLines)
		if avg <= 1.99 {
			continue
		}
		if bestDelta < 0 || delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = candidate, delta, avg
		}
	}
	if bestDelta < 0 {
		return DefaultDelimiter, false
	}
	return best, true
}

// fieldCountSpread returns the summed change in field count between
// consecutive records and the average field count.
func fieldCountSpread(records [][]string, skipEmptyLines bool) (int, float64) {
	var (
		delta, total, counted int
		prev                  = -1
	)
	for _, rec := range records {
		if skipEmptyLines && len(rec) == 1 && rec[0] == "" {
			continue
		}
		n := len(rec)
		total += n
		counted++
		if prev >= 0 {
			delta += abs(n - prev)
		}
		prev = n
	}
	if counted == 0 {
		return 0, 0
	}
	return delta, float64(total) / float64(counted)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
