package verify

import (
	"fmt"

	"github.com/keshon/blockfs/internal/fsimage/format"
)

// checkStructure walks the decoded pointer tables and returns a check for
// every block that is not OK, in index order.
func checkStructure(records []format.Record, decodeErrs []error) []BlockCheck {
	n := len(records)
	problems := make(map[int]BlockCheck)
	refs := make([]int, n)

	fail := func(i int, status Status, msg string, args ...any) {
		if _, seen := problems[i]; seen {
			return
		}
		problems[i] = BlockCheck{
			Index:   format.Index(i),
			Kind:    kindName(records[i], decodeErrs[i]),
			Name:    records[i].Name,
			Status:  status,
			Problem: fmt.Sprintf(msg, args...),
		}
	}
	usable := func(i int) bool { return decodeErrs[i] == nil }

	for i := range records {
		if !usable(i) {
			fail(i, Damaged, "%v", decodeErrs[i])
		}
	}
	if usable(0) && records[0].Kind != format.KindDirectory {
		fail(0, Damaged, "block 0 is a %s block, want directory", records[0].Kind)
	}

	for i, rec := range records {
		if !usable(i) {
			continue
		}
		switch rec.Kind {
		case format.KindDirectory:
			if len(rec.Pointers) > format.MaxFilesPerDir {
				fail(i, Damaged, "%d entries (limit %d)", len(rec.Pointers), format.MaxFilesPerDir)
			}
			seenFile := false
			for _, p := range rec.Pointers {
				t := int(p)
				if t >= n || t == 0 {
					fail(i, Damaged, "pointer %d out of range", p)
					continue
				}
				refs[t]++
				if !usable(t) {
					continue
				}
				switch records[t].Kind {
				case format.KindDirectory:
					if seenFile {
						fail(i, Damaged, "subdirectory pointer %d after file pointers", p)
					}
				case format.KindFileEntry:
					seenFile = true
				default:
					fail(i, Damaged, "pointer %d targets a %s block", p, records[t].Kind)
				}
			}

		case format.KindFileEntry:
			if limit := format.ChunkCount(format.MaxFileSize); len(rec.Pointers) > limit {
				fail(i, Damaged, "%d data blocks (limit %d)", len(rec.Pointers), limit)
			}
			for j, p := range rec.Pointers {
				t := int(p)
				if t >= n || t == 0 {
					fail(i, Damaged, "pointer %d out of range", p)
					continue
				}
				refs[t]++
				if !usable(t) {
					continue
				}
				if records[t].Kind != format.KindData {
					fail(i, Damaged, "pointer %d targets a %s block", p, records[t].Kind)
					continue
				}
				size := len(records[t].Payload)
				last := j == len(rec.Pointers)-1
				if (!last && size != format.DataCapacity) || (last && size == 0) {
					fail(i, Damaged, "data block %d holds %d bytes at position %d of %d", p, size, j+1, len(rec.Pointers))
				}
			}
		}
	}

	for i := 1; i < n; i++ {
		switch {
		case refs[i] == 0:
			fail(i, Orphaned, "not referenced")
		case refs[i] > 1:
			fail(i, Damaged, "referenced %d times", refs[i])
		}
	}

	out := make([]BlockCheck, 0, len(problems))
	for i := 0; i < n; i++ {
		if c, ok := problems[i]; ok {
			out = append(out, c)
		}
	}
	return out
}

func kindName(rec format.Record, err error) string {
	if err != nil {
		return "unknown"
	}
	return rec.Kind.String()
}
