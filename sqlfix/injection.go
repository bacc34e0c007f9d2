package sqlfix

// Injection is a quoted SQL value assembled from a non-literal expression:
// the leaves between the literal that opens a quote and the literal that
// closes it.
type Injection struct {
	Start, End int // leaf indexes of the opening and closing literals
	Interior   []int
	// Prefix and Suffix are the quoted text salvaged from the framing
	// literals, e.g. "%" for LIKE '%...%'.
	Prefix, Suffix string
}

// quote locates a single quote within escaped literal content; [Start,End)
// covers the quote and its escaping backslash, if any.
type quote struct {
	Start, End int
}

func quotes(raw string) []quote {
	var result []quote
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			if i+1 < len(raw) && raw[i+1] == '\'' {
				result = append(result, quote{Start: i, End: i + 2})
			}
			i++
		case '\'':
			result = append(result, quote{Start: i, End: i + 1})
		}
	}
	return result
}

// FindInjections scans the leaves left to right tracking whether the SQL
// text is inside a quoted value. A literal inside an open value closes it at
// its first quote; an odd number of remaining quotes opens a new value at the
// last one. Values holding no non-literal leaf are not injections and values
// left open at the end are ignored.
func FindInjections(l *Linearization) []Injection {
	var result []Injection
	var current *Injection
	for i, leaf := range l.Leaves {
		if !leaf.Literal {
			if current != nil {
				current.Interior = append(current.Interior, i)
			}
			continue
		}
		marks := quotes(leaf.Raw)
		if current != nil {
			if len(marks) == 0 {
				current.Interior = append(current.Interior, i)
				continue
			}
			current.End = i
			current.Suffix = leaf.Raw[:marks[0].Start]
			if hasNonLiteral(l, current.Interior) {
				result = append(result, *current)
			}
			current = nil
			marks = marks[1:]
		}
		if len(marks)%2 == 1 {
			last := marks[len(marks)-1]
			current = &Injection{Start: i, End: -1, Prefix: leaf.Raw[last.End:]}
		}
	}
	return result
}

func hasNonLiteral(l *Linearization, leaves []int) bool {
	for _, i := range leaves {
		if !l.Leaves[i].Literal {
			return true
		}
	}
	return false
}

// Rewrite returns the literal contents after replacing every injected value
// with a ? placeholder. Leaves inside an injection map to "" and are dropped
// from the query by the caller.
func Rewrite(l *Linearization, injections []Injection) map[int]string {
	result := map[int]string{}
	for _, injection := range injections {
		start := l.Leaves[injection.Start].Raw
		if prior, ok := result[injection.Start]; ok {
			start = prior
		}
		opening := quotes(start)
		result[injection.Start] = start[:opening[len(opening)-1].Start] + "?"

		end := l.Leaves[injection.End].Raw
		closing := quotes(end)
		result[injection.End] = end[closing[0].End:]
	}
	return result
}

// interior reports whether leaf i lies strictly inside an injection.
func interior(injections []Injection, i int) bool {
	for _, injection := range injections {
		if i > injection.Start && i < injection.End {
			return true
		}
	}
	return false
}
