package verify

import (
	"errors"
	"fmt"

	"github.com/keshon/blockfs/internal/fsimage/format"
)

// ErrMalformedImage is returned when a file cannot be an image at all.
var ErrMalformedImage = errors.New("malformed image")

// Status is the verdict for one block.
type Status int

const (
	OK Status = iota
	Damaged
	Orphaned
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Damaged:
		return "Damaged"
	case Orphaned:
		return "Orphaned"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, v := range []Status{OK, Damaged, Orphaned} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// ChecksumStatus compares an image with its sidecar digest.
type ChecksumStatus string

const (
	ChecksumAbsent    ChecksumStatus = "absent"
	ChecksumOK        ChecksumStatus = "ok"
	ChecksumMismatch  ChecksumStatus = "mismatch"
	ChecksumMalformed ChecksumStatus = "malformed"
)

// BlockCheck is the result for one block that is not OK.
type BlockCheck struct {
	Index   format.Index `json:"index"`
	Kind    string       `json:"kind"`
	Name    string       `json:"name,omitempty"`
	Status  Status       `json:"status"`
	Problem string       `json:"problem"`
}

// Report summarizes a verification run.
type Report struct {
	Image          string         `json:"image"`
	Size           int64          `json:"size"`
	Blocks         int            `json:"blocks"`
	Directories    int            `json:"directories"`
	Files          int            `json:"files"`
	Data           int            `json:"data"`
	Checksum       string         `json:"checksum"`
	ChecksumStatus ChecksumStatus `json:"checksum_status"`
	Problems       []BlockCheck   `json:"problems"`
}

// OK reports whether every block passed and the digest did not disagree.
func (r *Report) OK() bool {
	if len(r.Problems) > 0 {
		return false
	}
	return r.ChecksumStatus == ChecksumOK || r.ChecksumStatus == ChecksumAbsent
}

// Count returns how many problems have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, p := range r.Problems {
		if p.Status == s {
			n++
		}
	}
	return n
}
