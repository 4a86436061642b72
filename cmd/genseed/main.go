// Command genseed writes a YAML seed file for SEED_FILE. It always includes
// the built-in records and can pad them with synthetic sightings scattered
// around a center point, which is handy for trying the map with more markers.
//
// Usage:
//
//	go run ./cmd/genseed -out data/seed.yaml
//	go run ./cmd/genseed -out data/seed.yaml -extra 200 -lat 51.505 -lon -0.09 -spread 0.2
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/store"
	"github.com/jonboulle/clockwork"
)

// timestampLayout matches the double-spaced form of the built-in seed.
const timestampLayout = "1/2/2006  3:04:05 PM"

var names = []string{"Coffee", "Mochi", "Pixel", "Biscuit", "Nori", "Tofu", "Pepper", "Luna"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the YAML seed file")
	extra := flag.Int("extra", 0, "number of synthetic records to add")
	lat := flag.Float64("lat", 51.505, "center latitude for synthetic records")
	lon := flag.Float64("lon", -0.09, "center longitude for synthetic records")
	spread := flag.Float64("spread", 0.1, "max offset in degrees from the center")
	seed := flag.Uint64("seed", 1, "random seed, fixed for reproducible output")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *extra < 0 {
		return fmt.Errorf("-extra must be >= 0, got %d", *extra)
	}

	// Fixed clock so repeated runs produce identical files.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.April, 3, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	raw := append(domain.SeedRecords(), synthesize(*extra, *lat, *lon, *spread, *seed)...)
	if err := store.WriteSeedFile(*out, raw); err != nil {
		return err
	}
	log.Printf("wrote %d records (%d synthetic) to %s", len(raw), *extra, *out)
	return nil
}

// synthesize returns n records within spread degrees of (lat, lon), stamped
// at random points in the 30 days before the package clock.
func synthesize(n int, lat, lon, spread float64, seed uint64) []domain.RawRecord {
	rng := rand.New(rand.NewPCG(seed, seed))
	now := domain.Now()

	out := make([]domain.RawRecord, 0, n)
	for i := range n {
		at := now.Add(-time.Duration(rng.Int64N(int64(30 * 24 * time.Hour))))
		out = append(out, domain.RawRecord{
			Timestamp: at.Format(timestampLayout),
			Name:      names[rng.IntN(len(names))],
			Code:      strconv.Itoa(1_000_000_000 + i),
			Lat:       lat + (rng.Float64()*2-1)*spread,
			Lon:       lon + (rng.Float64()*2-1)*spread,
		})
	}
	return out
}
