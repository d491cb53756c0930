package utils

import (
	"fmt"
	"strings"
	"time"
)

// RequestNumber formats a human-readable work-order number: the uppercase
// three-letter month plus a zero-padded sequence, e.g. SEP042.
func RequestNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", strings.ToUpper(t.Format("Jan")), seq)
}
