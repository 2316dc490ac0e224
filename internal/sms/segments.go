// internal/sms/segments.go
package sms

// SegmentSize is the GSM-7 single-part character limit.
const SegmentSize = 160

// MaxSegments is the carrier's per-message part ceiling (1600 characters).
const MaxSegments = 10

// SegmentCount returns the number of billable parts for a message body.
func SegmentCount(body string) int {
	n := len(body)
	if n == 0 {
		return 1
	}
	return (n + SegmentSize - 1) / SegmentSize
}
