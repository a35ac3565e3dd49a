package utils

import (
	"math"
	"strconv"
)

var byteSizes = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders a byte count for humans, binary based: "0 Bytes",
// "512 Bytes", "1.5 KB", "1.21 KB", "3 MB". Values are rounded to two
// decimals and trailing zeros are trimmed.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteSizes) {
		i = len(byteSizes) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteSizes[i]
}
