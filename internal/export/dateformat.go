package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// FormatDateTime formats t with a date pattern.
//
// Patterns use the single-letter tokens common to form builders and CMS
// configuration: "d.m.Y" gives 07.02.2022, "Y-m-d H:i" gives 2022-02-07 13:45.
// A backslash emits the next character literally ("Y-m-d\TH:i:sP").
// Patterns containing '%' are treated as strftime layouts instead.
func FormatDateTime(t time.Time, pattern string) string {
	if strings.ContainsRune(pattern, '%') {
		return strftime.Format(pattern, t)
	}

	var b strings.Builder
	escaped := false

	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true

		// Day
		case 'd':
			b.WriteString(t.Format("02"))
		case 'D':
			b.WriteString(t.Format("Mon"))
		case 'j':
			b.WriteString(strconv.Itoa(t.Day()))
		case 'l':
			b.WriteString(t.Format("Monday"))
		case 'N':
			wd := int(t.Weekday())
			if wd == 0 {
				wd = 7
			}
			b.WriteString(strconv.Itoa(wd))
		case 'w':
			b.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'z':
			b.WriteString(strconv.Itoa(t.YearDay() - 1))

		// Week
		case 'W':
			_, week := t.ISOWeek()
			b.WriteString(pad(week, 2))

		// Month
		case 'F':
			b.WriteString(t.Format("January"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'M':
			b.WriteString(t.Format("Jan"))
		case 'n':
			b.WriteString(strconv.Itoa(int(t.Month())))
		case 't':
			b.WriteString(strconv.Itoa(daysIn(t)))

		// Year
		case 'L':
			if daysInYear(t.Year()) == 366 {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		case 'o':
			year, _ := t.ISOWeek()
			b.WriteString(strconv.Itoa(year))
		case 'Y':
			b.WriteString(pad(t.Year(), 4))
		case 'y':
			b.WriteString(t.Format("06"))

		// Time
		case 'a':
			b.WriteString(t.Format("pm"))
		case 'A':
			b.WriteString(t.Format("PM"))
		case 'g':
			b.WriteString(t.Format("3"))
		case 'G':
			b.WriteString(strconv.Itoa(t.Hour()))
		case 'h':
			b.WriteString(t.Format("03"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'i':
			b.WriteString(t.Format("04"))
		case 's':
			b.WriteString(t.Format("05"))
		case 'u':
			b.WriteString(pad(t.Nanosecond()/1000, 6))
		case 'v':
			b.WriteString(pad(t.Nanosecond()/1000000, 3))

		// Timezone
		case 'e':
			b.WriteString(t.Location().String())
		case 'T':
			b.WriteString(t.Format("MST"))
		case 'P':
			b.WriteString(t.Format("-07:00"))
		case 'p':
			b.WriteString(t.Format("Z07:00"))
		case 'O':
			b.WriteString(t.Format("-0700"))
		case 'Z':
			_, offset := t.Zone()
			b.WriteString(strconv.Itoa(offset))

		// Full date/time
		case 'c':
			b.WriteString(t.Format("2006-01-02T15:04:05-07:00"))
		case 'r':
			b.WriteString(t.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
		case 'U':
			b.WriteString(strconv.FormatInt(t.Unix(), 10))

		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
