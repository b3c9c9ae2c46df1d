package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var estNoDST = time.FixedZone("EST", -5*60*60)

const layout = "20060102 150405"

func parseToUnix(s string) (int64, error) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), estNoDST)
	if err != nil {
		return 0, err
	}
	return t.UTC().Unix(), nil
}

// Unix times at or above this are taken to be milliseconds (13 digits).
const unixMillisFloor = 1_000_000_000_000

// parseTime accepts RFC3339, RFC3339Nano, unix seconds or unix milliseconds.
func parseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Unix(), nil
	}
	if u, err := strconv.ParseInt(s, 10, 64); err == nil {
		if u >= unixMillisFloor {
			u /= 1000
		}
		return u, nil
	}
	return 0, fmt.Errorf("bad time %q", s)
}

// checkPlausible rejects candle times before 1970-01-02 or more than a day
// ahead of the wall clock.
func checkPlausible(ts int64) error {
	if ts < 86400 {
		return fmt.Errorf("implausible candle time %d", ts)
	}
	if ts > time.Now().Add(24*time.Hour).Unix() {
		return fmt.Errorf("candle time %s is in the future", time.Unix(ts, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

func bitIsSet(bits []uint64, i int) bool {
	return (bits[i>>6] & (uint64(1) << uint(i&63))) != 0
}
func bitSet(bits []uint64, i int) {
	bits[i>>6] |= (uint64(1) << uint(i&63))
}

func SecondsToTFString(sec int32) (string, error) {
	if sec <= 0 {
		return "", fmt.Errorf("invalid timeframe seconds: %d", sec)
	}

	// Minutes
	if sec < 3600 && sec%60 == 0 {
		return fmt.Sprintf("M%d", sec/60), nil
	}

	// Hours
	if sec < 86400 && sec%3600 == 0 {
		return fmt.Sprintf("H%d", sec/3600), nil
	}

	// Days
	if sec%86400 == 0 {
		days := sec / 86400
		if days == 7 {
			return "W1", nil
		}
		return fmt.Sprintf("D%d", days), nil
	}

	return "", fmt.Errorf("cannot map timeframe: %d seconds", sec)
}

func TFStringToSeconds(tf string) (int32, error) {
	switch strings.ToUpper(tf) {
	case "M1":
		return 60, nil
	case "M5":
		return 300, nil
	case "M15":
		return 900, nil
	case "M30":
		return 1800, nil
	case "H1":
		return 3600, nil
	case "H4":
		return 14400, nil
	case "D1":
		return 86400, nil
	case "W1":
		return 604800, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}
}
