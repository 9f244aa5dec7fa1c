// Package snapshot reads and writes ledger snapshot files.
//
// A snapshot file lists members, purchases and repayments:
//
//	ledger: Ski trip
//	members: [Alice, Bob, Carol]
//	purchases:
//	  - name: Dinner
//	    amount: 90
//	    purchaser: Alice
//	    split_members: [Alice, Bob, Carol]   # equal split
//	    timestamp: 2024-01-15T19:30:00Z
//	  - name: Taxi
//	    amount: 25.50
//	    purchaser: Bob
//	    split:
//	      - {member: Bob, amount: 10.50}
//	      - {member: Carol, amount: 15}
//	    timestamp: 2024-01-15
//	repayments:
//	  - {payer: Carol, receiver: Alice, amount: 30, timestamp: 2024-01-16}
//
// JSON is valid YAML, so the same loader reads JSON exports with numeric ids
// and ISO-8601 timestamps. Records that break a ledger invariant are loaded
// as-is; the calculator skips and counts them.
package snapshot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type file struct {
	Ledger     string      `yaml:"ledger,omitempty"`
	Members    []string    `yaml:"members"`
	Purchases  []purchase  `yaml:"purchases"`
	Repayments []repayment `yaml:"repayments"`
}

type share struct {
	Member string `yaml:"member"`
	Amount amount `yaml:"amount"`
}

type purchase struct {
	ID           scalar    `yaml:"id,omitempty"`
	Name         string    `yaml:"name"`
	Amount       amount    `yaml:"amount"`
	Purchaser    string    `yaml:"purchaser"`
	Split        []share   `yaml:"split,omitempty"`
	SplitMembers []string  `yaml:"split_members,omitempty"`
	Timestamp    timestamp `yaml:"timestamp,omitempty"`
}

type repayment struct {
	ID        scalar    `yaml:"id,omitempty"`
	Payer     string    `yaml:"payer"`
	Receiver  string    `yaml:"receiver"`
	Amount    amount    `yaml:"amount"`
	Timestamp timestamp `yaml:"timestamp,omitempty"`
}

// Load reads a snapshot file from disk.
func Load(path string) (*storage.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Parse decodes a YAML or JSON snapshot.
func Parse(data []byte) (*storage.Snapshot, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	snap := &storage.Snapshot{
		Ledger:     &models.Ledger{Name: f.Ledger},
		Members:    make([]models.Member, len(f.Members)),
		Purchases:  make([]models.Purchase, 0, len(f.Purchases)),
		Repayments: make([]models.Repayment, 0, len(f.Repayments)),
	}
	for i, name := range f.Members {
		snap.Members[i] = models.Member{Name: name}
	}

	for i, p := range f.Purchases {
		if len(p.Split) > 0 && len(p.SplitMembers) > 0 {
			return nil, fmt.Errorf("purchase %d (%q): give either split or split_members, not both", i+1, p.Name)
		}
		id := string(p.ID)
		if id == "" {
			id = fmt.Sprintf("p%d", i+1)
		}
		rec := models.Purchase{
			ID:        id,
			Name:      p.Name,
			Amount:    decimal.Decimal(p.Amount),
			Purchaser: p.Purchaser,
			Timestamp: time.Time(p.Timestamp),
		}
		if len(p.SplitMembers) > 0 {
			split, err := calculator.EqualSplit(rec.Amount, p.SplitMembers)
			if err != nil {
				// Left with an empty split, the purchase is skipped by the calculator
				slog.Warn("Cannot split purchase equally",
					"purchase", i+1,
					"name", p.Name,
					"error", err,
				)
			}
			rec.Split = split
		} else {
			rec.Split = make([]models.Share, len(p.Split))
			for j, s := range p.Split {
				rec.Split[j] = models.Share{Member: s.Member, Amount: decimal.Decimal(s.Amount)}
			}
		}
		snap.Purchases = append(snap.Purchases, rec)
	}

	for i, r := range f.Repayments {
		id := string(r.ID)
		if id == "" {
			id = fmt.Sprintf("r%d", i+1)
		}
		snap.Repayments = append(snap.Repayments, models.Repayment{
			ID:        id,
			Payer:     r.Payer,
			Receiver:  r.Receiver,
			Amount:    decimal.Decimal(r.Amount),
			Timestamp: time.Time(r.Timestamp),
		})
	}

	return snap, nil
}

// Marshal encodes a snapshot as YAML. Splits are always written explicitly.
func Marshal(snap *storage.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	f := file{
		Members:    make([]string, len(snap.Members)),
		Purchases:  make([]purchase, len(snap.Purchases)),
		Repayments: make([]repayment, len(snap.Repayments)),
	}
	if snap.Ledger != nil {
		f.Ledger = snap.Ledger.Name
	}
	for i, m := range snap.Members {
		f.Members[i] = m.Name
	}
	for i, p := range snap.Purchases {
		split := make([]share, len(p.Split))
		for j, s := range p.Split {
			split[j] = share{Member: s.Member, Amount: amount(s.Amount)}
		}
		f.Purchases[i] = purchase{
			ID:        scalar(p.ID),
			Name:      p.Name,
			Amount:    amount(p.Amount),
			Purchaser: p.Purchaser,
			Split:     split,
			Timestamp: timestamp(p.Timestamp),
		}
	}
	for i, r := range snap.Repayments {
		f.Repayments[i] = repayment{
			ID:        scalar(r.ID),
			Payer:     r.Payer,
			Receiver:  r.Receiver,
			Amount:    amount(r.Amount),
			Timestamp: timestamp(r.Timestamp),
		}
	}
	return yaml.Marshal(&f)
}

// Save writes a snapshot file.
func Save(path string, snap *storage.Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
