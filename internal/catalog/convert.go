package catalog

import (
	"fmt"
	"math"
)

// ChecksumToStorage converts a computed content checksum to the signed form the
// database stores. The conversion is deliberately checked: a value that does
// not fit the column is an error, never a silent truncation.
func ChecksumToStorage(sum uint64) (int64, error) {
	if sum > math.MaxInt64 {
		return 0, fmt.Errorf("checksum %d overflows storage width", sum)
	}
	return int64(sum), nil
}

// ChecksumFromStorage recovers the unsigned checksum from its stored form.
func ChecksumFromStorage(value int64) uint64 {
	return uint64(value)
}

// DurationToStorage converts a duration in milliseconds to the storage width.
func DurationToStorage(millis uint64) (int64, error) {
	if millis > math.MaxInt64 {
		return 0, fmt.Errorf("duration %dms overflows storage width", millis)
	}
	return int64(millis), nil
}
