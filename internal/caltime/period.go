package caltime

import (
	"fmt"
	"strings"
)

// Period is a start plus either an explicit end or a duration.
type Period struct {
	Start    DateTime
	End      DateTime
	Duration Duration
	explicit bool
}

func PeriodWithEnd(start, end DateTime) Period {
	return Period{Start: start, End: end, explicit: true}
}

func PeriodWithDuration(start DateTime, d Duration) Period {
	return Period{Start: start, Duration: d}
}

// ParsePeriod parses "start/end" or "start/duration".
func ParsePeriod(s string, tz Timezone) (Period, error) {
	startText, rest, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	start, err := ParseDateTime(startText, tz)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	if strings.HasPrefix(strings.TrimLeft(rest, "+-"), "P") {
		d, err := ParseDuration(rest)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
		}
		return PeriodWithDuration(start, d), nil
	}
	end, err := ParseDateTime(rest, tz)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	return PeriodWithEnd(start, end), nil
}

// HasEnd reports whether the period was written with an explicit end.
func (p Period) HasEnd() bool { return p.explicit }

// EndTime returns the explicit end or start plus duration.
func (p Period) EndTime() DateTime {
	if p.explicit {
		return p.End
	}
	return DateTime{t: p.Duration.AddTo(p.Start.t), tz: p.Start.tz}
}

func (p Period) Format() string {
	if p.explicit {
		return p.Start.Format() + "/" + p.End.Format()
	}
	return p.Start.Format() + "/" + p.Duration.String()
}

func (p Period) UTCOrLocal() Period {
	out := p
	out.Start = p.Start.UTCOrLocal()
	if p.explicit {
		out.End = p.End.UTCOrLocal()
	}
	return out
}

// DateOrPeriod is one RDATE entry.
type DateOrPeriod struct {
	value    DateOrDateTime
	period   Period
	isPeriod bool
}

func FromPeriod(p Period) DateOrPeriod { return DateOrPeriod{period: p, isPeriod: true} }

func FromValue(v DateOrDateTime) DateOrPeriod { return DateOrPeriod{value: v} }

// ParseDateOrPeriod parses a single entry of type DATE, DATE-TIME or PERIOD.
func ParseDateOrPeriod(value, valueType string, tz Timezone) (DateOrPeriod, error) {
	if strings.EqualFold(valueType, ValuePeriod) {
		p, err := ParsePeriod(value, tz)
		if err != nil {
			return DateOrPeriod{}, err
		}
		return FromPeriod(p), nil
	}
	v, err := ParseDateOrDateTime(value, valueType, tz)
	if err != nil {
		return DateOrPeriod{}, err
	}
	return FromValue(v), nil
}

func (v DateOrPeriod) IsPeriod() bool { return v.isPeriod }

func (v DateOrPeriod) Period() (Period, bool) { return v.period, v.isPeriod }

// Start is the date or date-time the entry begins at.
func (v DateOrPeriod) Start() DateOrDateTime {
	if v.isPeriod {
		return FromDateTime(v.period.Start)
	}
	return v.value
}

func (v DateOrPeriod) Format() string {
	if v.isPeriod {
		return v.period.Format()
	}
	return v.value.Format()
}

func (v DateOrPeriod) ValueType() string {
	if v.isPeriod {
		return ValuePeriod
	}
	return v.value.ValueType()
}

func (v DateOrPeriod) UTCOrLocal() DateOrPeriod {
	if v.isPeriod {
		return FromPeriod(v.period.UTCOrLocal())
	}
	return FromValue(v.value.UTCOrLocal())
}
