package pipeline

import (
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// OrderOptions selects how discovered images are sequenced.
type OrderOptions struct {
	Shuffle bool   // Uniform random order; natural name order when false.
	Seed    int64  // Shuffle seed; 0 picks one from the clock.
	First   string // Basename pinned to the front, "" for none.
}

// Warner receives the warning for a pinned name that matches no image.
type Warner interface {
	Warn(string, ...interface{})
}

// Order returns a new slice holding paths in presentation order, plus the
// seed actually used when shuffling (0 when not shuffled). The input slice
// is not modified.
func Order(paths []string, opts OrderOptions, log Warner) ([]string, int64) {
	out := make([]string, len(paths))
	copy(out, paths)

	var seed int64
	if opts.Shuffle {
		seed = opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewPCG(uint64(seed), 0))
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return naturalLess(filepath.Base(out[i]), filepath.Base(out[j]))
		})
	}

	if opts.First != "" {
		idx := findByName(out, opts.First)
		if idx < 0 {
			log.Warn("First image %q not found; using %s order", opts.First, orderName(opts.Shuffle))
		} else {
			pinned := out[idx]
			copy(out[1:idx+1], out[:idx])
			out[0] = pinned
		}
	}
	return out, seed
}

// findByName matches name against basenames, exactly first and then
// ignoring case.
func findByName(paths []string, name string) int {
	name = filepath.Base(name)
	for i, p := range paths {
		if filepath.Base(p) == name {
			return i
		}
	}
	for i, p := range paths {
		if strings.EqualFold(filepath.Base(p), name) {
			return i
		}
	}
	return -1
}

func orderName(shuffle bool) string {
	if shuffle {
		return "shuffled"
	}
	return "name"
}

var reNum = regexp.MustCompile(`\d+`)

// naturalLess compares names the way file browsers list them: embedded
// numbers numerically ("img2.jpg" before "img10.jpg") and text without
// regard to case. Names equal under those rules fall back to byte order.
func naturalLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	aa := reNum.FindAllStringIndex(la, -1)
	bb := reNum.FindAllStringIndex(lb, -1)
	pa, pb := 0, 0
	for i := 0; i < len(aa) && i < len(bb); i++ {
		if ta, tb := la[pa:aa[i][0]], lb[pb:bb[i][0]]; ta != tb {
			return ta < tb
		}
		na, _ := strconv.Atoi(la[aa[i][0]:aa[i][1]])
		nb, _ := strconv.Atoi(lb[bb[i][0]:bb[i][1]])
		if na != nb {
			return na < nb
		}
		pa, pb = aa[i][1], bb[i][1]
	}
	if ta, tb := la[pa:], lb[pb:]; ta != tb {
		return ta < tb
	}
	return a < b
}
