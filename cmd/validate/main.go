// Command validate checks a YAML seed file before it is handed to the
// service through SEED_FILE. It reports records whose timestamp will not
// normalize into a full date, coordinates outside the valid range, and
// missing display fields. Malformed rows never stop the service from
// starting, so this is the only place they are surfaced.
//
// Usage:
//
//	go run ./cmd/validate -seed data/seed.yaml
//	go run ./cmd/validate -seed data/seed.yaml -bounds 51,-0.5,52,0.5
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/store"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	seed := flag.String("seed", "", "path to YAML seed file")
	bounds := flag.String("bounds", "", "optional south,west,north,east rectangle to preview")
	flag.Parse()

	if *seed == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*seed, *bounds); code != 0 {
		os.Exit(code)
	}
}

func run(seedPath, boundsFlag string) int {
	fmt.Println("=== Cat Map Seed Validation ===")
	fmt.Println()

	raw, err := store.LoadSeedFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	records := domain.NormalizeAll(raw)

	phases := []*phase{
		validateTimestamps(raw, records),
		validateCoordinates(records),
		validateDisplayFields(records),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d\n", len(records))

	if boundsFlag != "" {
		b, err := parseBounds(boundsFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		inside := domain.SideList(records, b, true, domain.Criteria{})
		fmt.Printf("\nIn bounds %s: %d\n", boundsFlag, len(inside))
		for _, c := range domain.NewCards(inside) {
			fmt.Printf("  %-20s %s\n", c.Name, c.When)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateTimestamps flags rows that the date filter can never match.
func validateTimestamps(raw []domain.RawRecord, records []domain.LocationRecord) *phase {
	p := &phase{name: "Timestamps normalize to a full date"}
	for i, rec := range records {
		if len(strings.Fields(raw[i].Timestamp)) != 3 {
			p.errorf("record %d (%s): timestamp %q does not have date, time and meridiem", i, rec.Name, raw[i].Timestamp)
			continue
		}
		if !rec.Month.Valid || !rec.Day.Valid || !rec.Year.Valid {
			p.errorf("record %d (%s): date in %q is not month/day/year", i, rec.Name, raw[i].Timestamp)
			continue
		}
		if rec.Month.Value < 1 || rec.Month.Value > 12 {
			p.errorf("record %d (%s): month %d out of range", i, rec.Name, rec.Month.Value)
		}
		if rec.Day.Value < 1 || rec.Day.Value > 31 {
			p.errorf("record %d (%s): day %d out of range", i, rec.Name, rec.Day.Value)
		}
	}
	return p
}

func validateCoordinates(records []domain.LocationRecord) *phase {
	p := &phase{name: "Coordinates within WGS84 range"}
	for i, rec := range records {
		if rec.Lat < -90 || rec.Lat > 90 {
			p.errorf("record %d (%s): latitude %v out of range", i, rec.Name, rec.Lat)
		}
		if rec.Lon < -180 || rec.Lon > 180 {
			p.errorf("record %d (%s): longitude %v out of range", i, rec.Name, rec.Lon)
		}
	}
	return p
}

func validateDisplayFields(records []domain.LocationRecord) *phase {
	p := &phase{name: "Name and code present"}
	for i, rec := range records {
		if rec.Name == "" {
			p.errorf("record %d: empty name", i)
		}
		if rec.Code == "" {
			p.errorf("record %d (%s): empty code", i, rec.Name)
		}
	}
	return p
}

func parseBounds(s string) (domain.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return domain.Bounds{}, fmt.Errorf("bounds %q: want south,west,north,east", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return domain.Bounds{}, fmt.Errorf("bounds %q: %w", s, err)
		}
		v[i] = f
	}
	return domain.Bounds{South: v[0], West: v[1], North: v[2], East: v[3]}, nil
}
