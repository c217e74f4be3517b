// Package review defines the review record model and the content fingerprint
// used for deduplication across harvest runs.
package review

import (
	"crypto/sha1" //nolint:gosec // content addressing, not authentication
	"encoding/hex"
	"strings"
	"time"
)

// CivilTimeFormat is the display and fingerprint format for timestamps in
// the civil timezone, second precision.
const CivilTimeFormat = "2006-01-02 15:04:05"

// Civil is the fixed civil timezone used for day boundaries and displayed
// timestamps. Review timestamps from the source are absolute (UTC) and are
// converted to this zone for storage and fingerprinting.
var Civil = time.FixedZone("IST", 5*3600+30*60)

// Record is a single harvested review. Records are immutable once built and
// are appended to the store exactly once; the ID is a pure function of
// (app id, trimmed text, civil timestamp), so re-harvesting the same review
// always collides with the stored copy.
type Record struct {
	ID         string    // content fingerprint, see Fingerprint
	AppName    string    // display name of the tracked app
	ReviewedAt time.Time // review timestamp in the civil timezone
	Rating     int       // star rating as reported by the source
	IngestedAt time.Time // wall clock at the moment the record was accepted
	Text       string    // trimmed review body
}

// Fingerprint derives the stable identifier for a review. The three fields
// are joined with a single '|' in fixed order and hashed with SHA-1; the
// input composition must not change, existing stores depend on it.
// civilTimestamp is the review time formatted with CivilTimeFormat in the
// Civil zone.
func Fingerprint(appID, text, civilTimestamp string) string {
	raw := appID + "|" + strings.TrimSpace(text) + "|" + civilTimestamp
	sum := sha1.Sum([]byte(raw)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// CivilTimestamp formats an absolute instant for fingerprinting and storage.
func CivilTimestamp(t time.Time) string {
	return t.In(Civil).Format(CivilTimeFormat)
}

// Row flattens the record into the store's column order:
// [Review_Id, App_Name, Review_Date, Rating, Inserted_On, Review_Text].
func (r *Record) Row() []any {
	return []any{
		r.ID,
		r.AppName,
		r.ReviewedAt.In(Civil).Format(CivilTimeFormat),
		r.Rating,
		r.IngestedAt.In(Civil).Format(CivilTimeFormat),
		r.Text,
	}
}
