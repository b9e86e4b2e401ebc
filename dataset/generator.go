package dataset

import (
	"fmt"
	mrand "math/rand"
)

// paymentTypes mirrors the categorical values in the production dataset.
var paymentTypes = []string{"card", "cash", "dispute", "no_charge"}

// Config controls synthetic record generation.
type Config struct {
	Rows int
	Seed int64
}

// Generator produces deterministic synthetic trip records for local runs
// and tests: equal seeds yield identical records.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate returns cfg.Rows records keyed trip00000000..tripNNNNNNNN.
func (g *Generator) Generate() []Record {
	const base = int64(1_700_000_000_000) // epoch ms

	records := make([]Record, g.cfg.Rows)

	for i := range records {
		pickup := base + int64(g.rng.Intn(86_400_000))
		duration := int64(60_000 + g.rng.Intn(3_600_000))
		distance := 0.5 + g.rng.Float64()*30
		fare := 2.5 + distance*2.75

		records[i] = Record{
			TripID:         fmt.Sprintf("trip%08d", i),
			VendorID:       int32(1 + g.rng.Intn(2)),
			PickupTime:     pickup,
			DropoffTime:    pickup + duration,
			PassengerCount: int32(1 + g.rng.Intn(6)),
			TripDistance:   distance,
			FareAmount:     fare,
			TipAmount:      fare * g.rng.Float64() * 0.3,
			PaymentType:    paymentTypes[g.rng.Intn(len(paymentTypes))],
		}
	}

	return records
}
