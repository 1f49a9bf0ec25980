package upload

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count as "10.0MB" style text.
func FormatSize(n int64) string {
	if n == 0 {
		return "0B"
	}
	size := float64(n)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f%s", size, sizeUnits[i])
}
