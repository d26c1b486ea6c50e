// Package topics maintains the bounded rolling word corpus used to surface
// trending terms. The corpus is process-wide and shared across all tracked
// brands: trending topics are deliberately global, not per-brand.
package topics

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/abelbrown/earout/internal/model"
)

// DefaultCapacity is the number of words the rolling corpus retains.
const DefaultCapacity = 2000

// topN is how many ranked words UpdateAndGet returns.
const topN = 20

// minWordRunes excludes short tokens; only words of 4+ characters count.
const minWordRunes = 4

// nonWord matches maximal runs of non-word characters.
var nonWord = regexp.MustCompile(`\W+`)

// Corpus is a fixed-size circular buffer of words with on-demand frequency
// ranking. Goroutine-safe: concurrent search flows push into it.
type Corpus struct {
	mu    sync.Mutex
	buf   []string
	size  int
	head  int // next write position
	count int // number of valid entries (0..size)
}

// NewCorpus creates a corpus with the given capacity.
func NewCorpus(size int) *Corpus {
	if size <= 0 {
		size = DefaultCapacity
	}
	return &Corpus{
		buf:  make([]string, size),
		size: size,
	}
}

// UpdateAndGet tokenizes the mention texts, pushes the surviving words into
// the rolling buffer (evicting oldest first past capacity), and returns the
// top 20 most frequent distinct words currently buffered. Ties rank by
// earliest first occurrence in the buffer, oldest entries first — the order
// clients see is reproducible, not alphabetical.
func (c *Corpus) UpdateAndGet(mentions []model.Mention, brand string) []string {
	words := Tokenize(mentions, brand)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range words {
		c.buf[c.head] = w
		c.head = (c.head + 1) % c.size
		if c.count < c.size {
			c.count++
		}
	}

	return c.rank()
}

// Len returns the number of buffered words.
func (c *Corpus) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Words returns the buffered words, oldest first.
func (c *Corpus) Words() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// snapshot copies the buffer contents oldest-to-newest. Caller holds mu.
func (c *Corpus) snapshot() []string {
	out := make([]string, 0, c.count)
	start := (c.head - c.count + c.size) % c.size
	for i := 0; i < c.count; i++ {
		out = append(out, c.buf[(start+i)%c.size])
	}
	return out
}

// rank computes the top-N ranking over current contents. Caller holds mu.
func (c *Corpus) rank() []string {
	words := c.snapshot()

	counts := make(map[string]int, len(words))
	firstSeen := make(map[string]int, len(words))
	var distinct []string
	for i, w := range words {
		if _, seen := counts[w]; !seen {
			firstSeen[w] = i
			distinct = append(distinct, w)
		}
		counts[w]++
	}

	sort.SliceStable(distinct, func(a, b int) bool {
		wa, wb := distinct[a], distinct[b]
		if counts[wa] != counts[wb] {
			return counts[wa] > counts[wb]
		}
		return firstSeen[wa] < firstSeen[wb]
	})

	if len(distinct) > topN {
		distinct = distinct[:topN]
	}
	if distinct == nil {
		distinct = []string{}
	}
	return distinct
}

// Tokenize extracts corpus words from mention texts: texts joined with
// spaces, non-word runs collapsed, lowercased, then filtered against the
// stopword set, the brand name itself, and a minimum length.
func Tokenize(mentions []model.Mention, brand string) []string {
	if len(mentions) == 0 {
		return nil
	}

	parts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		parts = append(parts, m.Text)
	}
	cleaned := strings.ToLower(nonWord.ReplaceAllString(strings.Join(parts, " "), " "))

	brandLower := strings.ToLower(brand)
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) < minWordRunes {
			continue
		}
		if w == brandLower {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}
