package format

import "fmt"

// Duration renders seconds as m:ss or h:mm:ss.
func Duration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FileSize renders a byte count in human units.
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "Unknown"
	}

	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}
