package messages

import "time"

// Timestamp is the packed 32-bit JAUS time of day: milliseconds in the low
// ten bits, then seconds, minutes, hours, and day of month.
type Timestamp struct {
	Ms  uint16 `jaus:"bits=10"`
	Sec uint8  `jaus:"bits=6"`
	Min uint8  `jaus:"bits=6"`
	Hr  uint8  `jaus:"bits=5"`
	Day uint8  `jaus:"bits=5"`
}

// TimestampFromTime packs t.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{
		Ms:  uint16(t.Nanosecond() / 1e6),
		Sec: uint8(t.Second()),
		Min: uint8(t.Minute()),
		Hr:  uint8(t.Hour()),
		Day: uint8(t.Day()),
	}
}
