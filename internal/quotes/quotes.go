// Package quotes loads the motivational quotes file and hands them out
// without repeats until every quote has been shown once.
package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileName is the quotes file inside the data directory.
const FileName = "quotes.json"

type file struct {
	Quotes []string `json:"quotes"`
}

// Load reads {"quotes": [...]} from dir. A missing file has no quotes.
func Load(fs afero.Fs, dir string) ([]string, error) {
	path := filepath.Join(dir, FileName)
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var qf file
	if err := json.NewDecoder(f).Decode(&qf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := qf.Quotes[:0]
	for _, q := range qf.Quotes {
		if q != "" {
			out = append(out, q)
		}
	}
	return out, nil
}

// Deck draws quotes at random, each at most once per pass.
type Deck struct {
	all       []string
	available []string
	rng       *rand.Rand
}

// NewDeck returns a deck over quotes. A nil rng uses a randomly seeded source.
func NewDeck(quotes []string, rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	d := &Deck{all: append([]string(nil), quotes...), rng: rng}
	d.refill()
	return d
}

func (d *Deck) refill() {
	d.available = append(d.available[:0], d.all...)
}

// Len is the total number of quotes.
func (d *Deck) Len() int { return len(d.all) }

// Draw returns the next quote, or "" when the deck is empty.
func (d *Deck) Draw() string {
	if len(d.all) == 0 {
		return ""
	}
	if len(d.available) == 0 {
		d.refill()
	}
	i := d.rng.IntN(len(d.available))
	q := d.available[i]
	d.available[i] = d.available[len(d.available)-1]
	d.available = d.available[:len(d.available)-1]
	return q
}
