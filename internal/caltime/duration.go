package caltime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is an iCalendar DURATION value. Weeks and days are nominal and
// follow the calendar across DST changes; the time part is exact.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

var durationRe = regexp.MustCompile(`^([+-])?P((\d+D)?(T(\d+H)?(\d+M)?(\d+S)?)?|(\d+W)?)$`)

// ParseDuration parses values such as "PT1H", "-P1DT12H" or "P2W". Weeks
// cannot be combined with other units and units must appear in order.
func ParseDuration(s string) (Duration, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var d Duration
	d.Negative = m[1] == "-"
	fields := []struct {
		group string
		dst   *int
	}{
		{m[3], &d.Days},
		{m[5], &d.Hours},
		{m[6], &d.Minutes},
		{m[7], &d.Seconds},
		{m[8], &d.Weeks},
	}
	for _, f := range fields {
		if f.group == "" {
			continue
		}
		n, err := strconv.Atoi(f.group[:len(f.group)-1])
		if err != nil {
			return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		*f.dst = n
	}
	return d, nil
}

// DurationOf converts an exact duration into days, hours, minutes and seconds.
// Whole weeks are written as weeks.
func DurationOf(td time.Duration) Duration {
	var d Duration
	if td < 0 {
		d.Negative = true
		td = -td
	}
	secs := int64(td / time.Second)
	days := secs / 86400
	secs %= 86400
	if secs == 0 && days > 0 && days%7 == 0 {
		d.Weeks = int(days / 7)
		return d
	}
	d.Days = int(days)
	d.Hours = int(secs / 3600)
	d.Minutes = int(secs % 3600 / 60)
	d.Seconds = int(secs % 60)
	return d
}

// Std returns the duration with days counted as 24 hours.
func (d Duration) Std() time.Duration {
	total := time.Duration(d.Weeks*7+d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

func (d Duration) IsZero() bool {
	return d.Weeks == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// AddTo applies the duration to t: nominal days first, then the exact part.
func (d Duration) AddTo(t time.Time) time.Time {
	sign := 1
	if d.Negative {
		sign = -1
	}
	clock := time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute + time.Duration(d.Seconds)*time.Second
	return t.AddDate(0, 0, sign*(d.Weeks*7+d.Days)).Add(time.Duration(sign) * clock)
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Negative && !d.IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.IsZero() {
		b.WriteString("T0S")
		return b.String()
	}
	if d.Weeks > 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0 {
		fmt.Fprintf(&b, "%dW", d.Weeks)
		return b.String()
	}
	if days := d.Weeks*7 + d.Days; days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if d.Hours > 0 || d.Minutes > 0 || d.Seconds > 0 {
		b.WriteByte('T')
		if d.Hours > 0 {
			fmt.Fprintf(&b, "%dH", d.Hours)
		}
		if d.Minutes > 0 {
			fmt.Fprintf(&b, "%dM", d.Minutes)
		}
		if d.Seconds > 0 {
			fmt.Fprintf(&b, "%dS", d.Seconds)
		}
	}
	return b.String()
}
